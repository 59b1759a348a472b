// internal/app/system/limits/limits.go
package limits

// Request body size limits. These prevent memory exhaustion from oversized
// requests; nothing this application accepts comes close to them.
const (
	// MaxJSONBodySize caps JSON request bodies accepted by the API handlers.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxWebhookBodySize caps payment webhook payloads. The processor's
	// events are a few KB; anything larger is not a legitimate delivery.
	MaxWebhookBodySize = 64 << 10 // 64 KB
)
