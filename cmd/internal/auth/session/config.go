package session

import (
	"os"
	"strings"
	"time"
)

// CookieName carries the signed session token.
const CookieName = "auth-token"

// Config is the session resolver configuration.
type Config struct {
	// LookupTimeout bounds the CrossCheck user lookup and revocation check.
	LookupTimeout time.Duration

	// RevocationPrefix namespaces denylist keys in Redis.
	RevocationPrefix string
}

func DefaultConfig() Config {
	return Config{
		LookupTimeout:    2 * time.Second,
		RevocationPrefix: "folio:revoked:",
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Optional:
//   - FOLIO_SESSION_LOOKUP_TIMEOUT (Go duration, 1ms..30s)
//   - FOLIO_SESSION_REVOCATION_PREFIX
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("FOLIO_SESSION_LOOKUP_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < time.Millisecond || d > 30*time.Second {
			return Config{}, ErrConfig
		}
		cfg.LookupTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("FOLIO_SESSION_REVOCATION_PREFIX")); v != "" {
		cfg.RevocationPrefix = v
	}

	return cfg, nil
}
