// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, request limits). AppConfig is everything specific to
// Our Third Place: database connection, sessions, the payment processor,
// the identity provider, and OAuth.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: thirdplace-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL for OAuth callbacks and checkout redirect URLs
	BaseURL string // e.g., "https://ourthirdplace.com" or "http://localhost:3000"

	// Payment processor configuration
	StripeSecretKey     string // Stripe API secret key
	StripeWebhookSecret string // Shared secret for verifying webhook signatures
	CheckoutSuccessURL  string // Where the hosted page sends the member after payment
	CheckoutCancelURL   string // Where the hosted page sends the member on cancel
	Currency            string // ISO currency code for membership pricing (default: usd)

	// Identity provider configuration
	IdentityMode       string // "hosted" (external provider) or "local" (bcrypt in Mongo)
	IdentityBaseURL    string // Hosted provider base URL
	IdentityServiceKey string // Service-to-service key for the hosted provider

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Audit logging settings: "all" (db+log), "db", "log", or "off"
	AuditLogAuth    string
	AuditLogBilling string
	AuditLogAdmin   string
}
