// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; ports, TLS and log level
// live in WAFFLE's CoreConfig.
type AppConfig struct {
	// Storage backend: "mongo" (default) or "memory" for local runs.
	StoreBackend string

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Identity tokens
	JWTSecret string        // HS256 signing secret, at least 16 characters
	JWTTTL    time.Duration // token lifetime

	// HTTP
	CORSAllowedOrigins []string // browser origins allowed to call the API
	DefaultPageLimit   int      // page size when a listing has no "limit"

	// Abuse protection
	LoginRatePerMinute int // login/signup attempts per client IP per minute

	// How often job/user gauges are recomputed from MongoDB; 0 disables.
	GaugeInterval time.Duration

	// Audit logging: 'all' (db+log), 'db', 'log', or 'off'
	AuditLog string

	// Account promoted to admin on startup, if it exists.
	AdminEmail string
	// Password for admin_email when the memory backend has to create it.
	AdminPassword string
}
