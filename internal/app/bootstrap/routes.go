// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authnfeature "github.com/dalemusser/cartsync/internal/app/features/authn"
	healthfeature "github.com/dalemusser/cartsync/internal/app/features/health"
	listfeature "github.com/dalemusser/cartsync/internal/app/features/list"
	livefeature "github.com/dalemusser/cartsync/internal/app/features/live"
	profilefeature "github.com/dalemusser/cartsync/internal/app/features/profile"
	"github.com/dalemusser/cartsync/internal/app/identity"
	accountstore "github.com/dalemusser/cartsync/internal/app/store/accounts"
	itemstore "github.com/dalemusser/cartsync/internal/app/store/items"
	syncrepo "github.com/dalemusser/cartsync/internal/app/sync"
	"github.com/dalemusser/cartsync/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The shared backends are wired once into
// a sync.Factory; each request then gets its own session-scoped repository.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	factory := syncrepo.NewFactory(
		itemstore.New(db),
		accountstore.New(db, logger),
		identity.NewMongoProvider(db, logger),
		logger,
	)

	r := chi.NewRouter()

	// Global auth middleware: loads the principal into context when the
	// cookie session carries one.
	r.Use(sessionMgr.LoadSessionPrincipal)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Get("/health", healthHandler.Serve)

	// Authentication
	r.Mount("/api", authnfeature.Routes(authnfeature.NewHandler(factory, sessionMgr, logger)))

	// Shared list
	r.Mount("/api/items", listfeature.Routes(listfeature.NewHandler(factory, logger)))

	// Live snapshot streams
	r.Mount("/api/live", livefeature.Routes(livefeature.NewHandler(factory, logger)))

	// Account / counters
	r.Mount("/api/profile", profilefeature.Routes(profilefeature.NewHandler(factory, logger)))

	return r, nil
}
