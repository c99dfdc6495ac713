// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/felix-ong/volunteer-board/internal/app/store/audit"
	jobstore "github.com/felix-ong/volunteer-board/internal/app/store/jobs"
	"github.com/felix-ong/volunteer-board/internal/app/store/memory"
	metricsstore "github.com/felix-ong/volunteer-board/internal/app/store/metrics"
	userstore "github.com/felix-ong/volunteer-board/internal/app/store/users"
	"github.com/felix-ong/volunteer-board/internal/app/system/indexes"
	"github.com/felix-ong/volunteer-board/internal/app/system/ratelimit"
	"github.com/felix-ong/volunteer-board/internal/app/system/timeouts"
	"github.com/felix-ong/volunteer-board/internal/app/system/validators"
	"github.com/felix-ong/volunteer-board/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the configured store backend and builds the
// repositories on top of it.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{AuthLimiter: ratelimit.NewAuthLimiter(appCfg.LoginRatePerMinute)}

	if appCfg.StoreBackend == backendMemory {
		logger.Info("using in-memory store backend")
		deps.Jobs = memory.NewJobStore()
		deps.Users = memory.NewUserStore()
		deps.Audit = memory.NewAuditStore()
		return deps, nil
	}

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		deps.AuthLimiter.Stop()
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		deps.AuthLimiter.Stop()
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	db := client.Database(appCfg.MongoDatabase)
	deps.MongoClient = client
	deps.MongoDatabase = db
	deps.Jobs = jobstore.New(db)
	deps.Users = userstore.New(db)
	deps.Audit = audit.New(db)
	if appCfg.GaugeInterval > 0 {
		count := func(ctx context.Context) metricsstore.Counts { return metricsstore.FetchBoardCounts(ctx, db) }
		deps.Gauges = workers.NewBoardGauges(count, logger, appCfg.GaugeInterval)
	}
	return deps, nil
}

// EnsureSchema reconciles MongoDB indexes. Nothing to do on the memory
// backend.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("validator setup failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured")
	return nil
}
