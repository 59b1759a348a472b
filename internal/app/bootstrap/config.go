// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Our Third Place.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: THIRDPLACE_MONGO_URI, THIRDPLACE_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "thirdplace", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "thirdplace-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Base URL for OAuth callbacks and checkout redirects
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public base URL of this deployment"},

	// Payment processor
	{Name: "stripe_secret_key", Default: "", Desc: "Stripe API secret key"},
	{Name: "stripe_webhook_secret", Default: "", Desc: "Stripe webhook signing secret"},
	{Name: "checkout_success_url", Default: "", Desc: "Checkout success redirect (default: <base_url>/payment-success)"},
	{Name: "checkout_cancel_url", Default: "", Desc: "Checkout cancel redirect (default: <base_url>/signup)"},
	{Name: "currency", Default: "usd", Desc: "ISO currency code for membership pricing"},

	// Identity provider
	{Name: "identity_mode", Default: "local", Desc: "Identity backend: 'hosted' or 'local'"},
	{Name: "identity_base_url", Default: "", Desc: "Hosted identity provider base URL"},
	{Name: "identity_service_key", Default: "", Desc: "Service key for the hosted identity provider"},

	// Google OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Audit logging
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_billing", Default: "all", Desc: "Billing event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin/member action logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have access
// to configuration before any backends or handlers are built.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "THIRDPLACE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		BaseURL: appValues.String("base_url"),

		StripeSecretKey:     appValues.String("stripe_secret_key"),
		StripeWebhookSecret: appValues.String("stripe_webhook_secret"),
		CheckoutSuccessURL:  appValues.String("checkout_success_url"),
		CheckoutCancelURL:   appValues.String("checkout_cancel_url"),
		Currency:            appValues.String("currency"),

		IdentityMode:       appValues.String("identity_mode"),
		IdentityBaseURL:    appValues.String("identity_base_url"),
		IdentityServiceKey: appValues.String("identity_service_key"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogBilling: appValues.String("audit_log_billing"),
		AuditLogAdmin:   appValues.String("audit_log_admin"),
	}

	// The hosted checkout needs somewhere to send the member back to.
	if appCfg.CheckoutSuccessURL == "" {
		appCfg.CheckoutSuccessURL = appCfg.BaseURL + "/payment-success"
	}
	if appCfg.CheckoutCancelURL == "" {
		appCfg.CheckoutCancelURL = appCfg.BaseURL + "/signup"
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	switch appCfg.IdentityMode {
	case "local":
	case "hosted":
		if appCfg.IdentityBaseURL == "" {
			return fmt.Errorf("identity_mode 'hosted' requires identity_base_url")
		}
	default:
		return fmt.Errorf("identity_mode must be 'hosted' or 'local', got %q", appCfg.IdentityMode)
	}

	if appCfg.StripeSecretKey == "" {
		logger.Warn("stripe_secret_key is empty; checkout will fail until it is set")
	}
	if appCfg.StripeWebhookSecret == "" {
		logger.Warn("stripe_webhook_secret is empty; webhook deliveries will be rejected")
	}

	return nil
}
