// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/felix-ong/volunteer-board/internal/app/system/auditlog"
	"github.com/felix-ong/volunteer-board/internal/app/system/paging"
	"github.com/felix-ong/volunteer-board/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	backendMongo  = "mongo"
	backendMemory = "memory"

	// Matches the signup minimum.
	minAdminPasswordLen = 8
)

// appConfigKeys defines the configuration keys for the volunteer board.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: VOLUNTEERBOARD_MONGO_URI, VOLUNTEERBOARD_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: backendMongo, Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "volunteer_board", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789", Desc: "Token signing secret (must be strong in production)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Token lifetime (e.g., 24h, 90m)"},

	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated list of allowed browser origins"},
	{Name: "default_page_limit", Default: paging.DefaultLimit, Desc: "Page size when a listing request has no limit"},
	{Name: "login_rate_per_minute", Default: 10, Desc: "Login/signup attempts allowed per client IP per minute"},

	{Name: "gauge_interval", Default: "1m", Desc: "How often board gauges are refreshed from MongoDB (0 disables)"},

	{Name: "audit_log", Default: auditlog.ModeAll, Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "admin_email", Default: "", Desc: "Email of an existing account to promote to admin on startup"},
	{Name: "admin_password", Default: "", Desc: "Password used to create admin_email on the memory backend"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env > files > defaults. TIMEOUT_* environment variables are
// applied to the timeouts package here as well.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "VOLUNTEERBOARD", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:     strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		DefaultPageLimit:   appValues.Int("default_page_limit"),
		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),

		GaugeInterval: appValues.Duration("gauge_interval", time.Minute),

		AuditLog:   appValues.String("audit_log"),
		AdminEmail: appValues.String("admin_email"),

		AdminPassword: appValues.String("admin_password"),
	}

	timeouts.ConfigureFromEnv()
	logger.Info("timeouts configured", zap.String("timeouts", fmt.Sprintf("%+v", timeouts.Current())))

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked before any connection attempt, and the JWT
// secret is rejected when it is too short to sign with.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case backendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database must be set")
		}
	case backendMemory:
		if coreCfg != nil && coreCfg.Env == "prod" {
			logger.Warn("memory store backend in prod: data is lost on restart")
		}
		if appCfg.AdminEmail != "" && len(appCfg.AdminPassword) < minAdminPasswordLen {
			return fmt.Errorf("admin_password must be at least %d characters when admin_email is set on the memory backend", minAdminPasswordLen)
		}
	default:
		return fmt.Errorf("store_backend must be %q or %q, got %q", backendMongo, backendMemory, appCfg.StoreBackend)
	}

	if len(appCfg.JWTSecret) < 16 {
		return fmt.Errorf("jwt_secret must be at least 16 characters")
	}
	if appCfg.DefaultPageLimit < 1 || appCfg.DefaultPageLimit > paging.MaxLimit {
		return fmt.Errorf("default_page_limit must be between 1 and %d", paging.MaxLimit)
	}
	switch appCfg.AuditLog {
	case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("audit_log must be one of all, db, log, off")
	}
	return nil
}
