// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/ourthirdplace/thirdplace/internal/app/store/oauthstate"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/tasks"
	"go.uber.org/zap"
)

// background holds the maintenance job runner between Startup and Shutdown.
var background *tasks.Runner

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		return err
	}

	background = tasks.NewRunner(logger,
		tasks.OAuthStateCleanupJob(oauthstate.New(deps.MongoDatabase), logger),
	)
	background.Start()

	return nil
}
