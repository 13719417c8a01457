package app

import "time"

// Config contains process-level runtime configuration loaded from FOLIO_*.
// Component packages (token, session, gate, authapi, portfolio) load their
// own settings.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrateOnStart bool

	// RedisURL enables the token revocation list.
	RedisURL string

	// If true, /readyz returns 503 unless the database is configured and reachable.
	ReadinessRequireDB bool

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int

	// WebDir, when set, is served as static files behind the gate.
	WebDir string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("FOLIO_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("FOLIO_LOG_LEVEL", "info"),
		LogFormat: EnvString("FOLIO_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("FOLIO_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("FOLIO_HTTP_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:      EnvDuration("FOLIO_HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       EnvDuration("FOLIO_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("FOLIO_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL:    EnvString("FOLIO_DATABASE_URL", ""),
		DBMaxConns:     EnvInt32("FOLIO_DB_MAX_CONNS", 10),
		DBMinConns:     EnvInt32("FOLIO_DB_MIN_CONNS", 0),
		MigrateOnStart: EnvBool("FOLIO_MIGRATE_ON_START", false),

		RedisURL: EnvString("FOLIO_REDIS_URL", ""),

		ReadinessRequireDB: EnvBool("FOLIO_READINESS_REQUIRE_DB", false),

		CORSAllowedOrigins:   EnvList("FOLIO_CORS_ALLOWED_ORIGINS"),
		CORSAllowCredentials: EnvBool("FOLIO_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("FOLIO_CORS_MAX_AGE_SECONDS", 600),

		WebDir: EnvString("FOLIO_WEB_DIR", ""),
	}
}
