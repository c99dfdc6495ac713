// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	healthfeature "github.com/felix-ong/volunteer-board/internal/app/features/health"
	jobsfeature "github.com/felix-ong/volunteer-board/internal/app/features/jobs"
	usersfeature "github.com/felix-ong/volunteer-board/internal/app/features/users"
	"github.com/felix-ong/volunteer-board/internal/app/jobboard"
	"github.com/felix-ong/volunteer-board/internal/app/system/auditlog"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Every request passes through request
// ids, logging, panic recovery, CORS, metrics and identity loading before
// reaching a feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenService(appCfg.JWTSecret, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token service init failed", zap.Error(err))
		return nil, err
	}
	passwords := auth.NewPasswordService()
	audit := auditlog.New(deps.Audit, logger, appCfg.AuditLog)
	board := jobboard.New(deps.Jobs, deps.Users, audit, logger).WithHistory(deps.Audit)

	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: appCfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	r.Use(metrics.InstrumentHandler)
	r.Use(auth.LoadIdentity(tokens, logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	jobsHandler := jobsfeature.NewHandler(board, appCfg.DefaultPageLimit, logger)
	r.Mount("/api/jobs", jobsfeature.Routes(jobsHandler))

	usersHandler := usersfeature.NewHandler(deps.Users, board, tokens, passwords, deps.AuthLimiter, audit, logger)
	r.Mount("/api/user", usersfeature.Routes(usersHandler))

	return r, nil
}
