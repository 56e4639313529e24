// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/teamhub/internal/app/enroll"
	enrollmentfeature "github.com/dalemusser/teamhub/internal/app/features/enrollment"
	healthfeature "github.com/dalemusser/teamhub/internal/app/features/health"
	enrollmentstore "github.com/dalemusser/teamhub/internal/app/store/enrollment"
	notificationstore "github.com/dalemusser/teamhub/internal/app/store/notifications"
	"github.com/dalemusser/teamhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// sweeper is started in BuildHandler and stopped in Shutdown.
var sweeper *workers.WaitlistSweeper

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. teamhub wires the enrollment engine —
// mongo-backed store, notification journal as the event emitter (teed with
// the service log) — and mounts the enrollment API and health endpoints.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.TeamHubMongoDatabase

	store := enrollmentstore.New(db)
	emitter := enroll.MultiEmitter{
		notificationstore.New(db, logger),
		enroll.NewLogEmitter(logger),
	}
	engine := enroll.NewController(store, emitter, logger)

	if appCfg.SweepIntervalSeconds > 0 {
		interval := time.Duration(appCfg.SweepIntervalSeconds) * time.Second
		sweeper = workers.NewWaitlistSweeper(engine, store.ListSweepableGroupIDs, logger, interval)
		sweeper.Start()
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.TeamHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Enrollment API
	enrollmentHandler := enrollmentfeature.NewHandler(engine, logger)
	r.Mount("/enrollment", enrollmentfeature.Routes(enrollmentHandler))

	return r, nil
}
