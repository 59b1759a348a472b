// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/ourthirdplace/thirdplace/internal/app/features/authgoogle"
	checkoutfeature "github.com/ourthirdplace/thirdplace/internal/app/features/checkout"
	eventsfeature "github.com/ourthirdplace/thirdplace/internal/app/features/events"
	healthfeature "github.com/ourthirdplace/thirdplace/internal/app/features/health"
	hosteventsfeature "github.com/ourthirdplace/thirdplace/internal/app/features/hostevents"
	loginfeature "github.com/ourthirdplace/thirdplace/internal/app/features/login"
	logoutfeature "github.com/ourthirdplace/thirdplace/internal/app/features/logout"
	paymentsfeature "github.com/ourthirdplace/thirdplace/internal/app/features/payments"
	profilefeature "github.com/ourthirdplace/thirdplace/internal/app/features/profile"
	signupfeature "github.com/ourthirdplace/thirdplace/internal/app/features/signup"
	"github.com/ourthirdplace/thirdplace/internal/app/store/audit"
	eventstore "github.com/ourthirdplace/thirdplace/internal/app/store/events"
	membershipstore "github.com/ourthirdplace/thirdplace/internal/app/store/memberships"
	"github.com/ourthirdplace/thirdplace/internal/app/store/oauthstate"
	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	registrationstore "github.com/ourthirdplace/thirdplace/internal/app/store/registrations"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/identity"
	"github.com/ourthirdplace/thirdplace/internal/app/system/payments"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The router splits into two trees: the
// payment webhook, which authenticates by signature and must never depend on
// cookies, and everything else, which runs behind the session middleware.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Stores
	profiles := profilestore.New(db)
	memberships := membershipstore.New(db)
	events := eventstore.New(db)
	registrations := registrationstore.New(db)
	states := oauthstate.New(db)

	// Audit trail
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Billing: appCfg.AuditLogBilling,
		Admin:   appCfg.AuditLogAdmin,
	})

	// Identity provider
	var ids identity.Store
	if appCfg.IdentityMode == "hosted" {
		ids = identity.NewHostedStore(appCfg.IdentityBaseURL, appCfg.IdentityServiceKey, logger)
	} else {
		ids = identity.NewLocalStore(db)
	}

	// Payment processor
	gateway := payments.NewStripeGateway(appCfg.StripeSecretKey, appCfg.StripeWebhookSecret, logger)

	// Feature handlers
	signupHandler := signupfeature.NewHandler(profiles, memberships, ids, auditLog, logger)
	checkoutHandler := checkoutfeature.NewHandler(memberships, gateway, auditLog, logger,
		appCfg.CheckoutSuccessURL, appCfg.CheckoutCancelURL, appCfg.Currency)
	paymentsHandler := paymentsfeature.NewHandler(memberships, profiles, gateway, auditLog, logger)
	eventsHandler := eventsfeature.NewHandler(events, registrations, memberships, auditLog, logger)
	hostEventsHandler := hosteventsfeature.NewHandler(events, auditLog, logger)
	profileHandler := profilefeature.NewHandler(profiles, auditLog, logger)
	loginHandler := loginfeature.NewHandler(ids, profiles, auditLog, logger)
	logoutHandler := logoutfeature.NewHandler(auditLog, logger)
	googleHandler := authgooglefeature.NewHandler(profiles, states, auditLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.BaseURL, logger)

	r := chi.NewRouter()

	// Webhook deliveries carry no session; mounted before the cookie
	// middleware so a broken session store can never block activation.
	r.Post("/webhooks/payment", paymentsHandler.HandleWebhook)

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Group(func(r chi.Router) {
		// Loads SessionUser into context if logged in, making the current
		// user available to all handlers via auth.CurrentUser(r).
		r.Use(auth.LoadSessionUser)

		// Signup and payment funnel
		r.Mount("/signup", signupfeature.Routes(signupHandler))
		r.Mount("/create-checkout-session", checkoutfeature.Routes(checkoutHandler))
		r.Mount("/payment-success", paymentsfeature.Routes(paymentsHandler))

		// Authentication
		r.Mount("/login", loginfeature.Routes(loginHandler))
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))
		r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

		// Member area
		r.Mount("/events", eventsfeature.Routes(eventsHandler))
		r.Mount("/profile", profilefeature.Routes(profileHandler))

		// Host area
		r.Mount("/host/events", hosteventsfeature.Routes(hostEventsHandler))
	})

	return r, nil
}
