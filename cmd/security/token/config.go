package token

import (
	"os"
	"strings"
	"time"
)

const (
	// SecretEnvKey is the env var name for the token signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "FOLIO_AUTH_SECRET"

	// MinSecretBytes is the smallest accepted HMAC-SHA256 secret.
	MinSecretBytes = 32

	// DefaultTTL is the fixed session validity window.
	DefaultTTL = 7 * 24 * time.Hour
)

// Config is the immutable configuration of a Codec.
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// DefaultConfig returns everything except the secret, which must always be
// supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Issuer: "folio",
		TTL:    DefaultTTL,
	}
}

// Validate checks the secret and TTL.
func (c Config) Validate() error {
	if len(c.Secret) == 0 {
		return ErrSecretMissing
	}
	if len(c.Secret) < MinSecretBytes {
		return ErrSecretTooShort
	}
	if c.TTL <= 0 {
		return ErrConfig
	}
	return nil
}

// LoadConfigFromEnv loads codec configuration from the environment.
//
// Required:
//   - FOLIO_AUTH_SECRET
//
// Optional:
//   - FOLIO_AUTH_TOKEN_TTL (Go duration)
//   - FOLIO_AUTH_ISSUER
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("FOLIO_AUTH_ISSUER")); v != "" {
		cfg.Issuer = v
	}

	if v := strings.TrimSpace(os.Getenv("FOLIO_AUTH_TOKEN_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	// Bytes, not runes: the secret is used as a raw HMAC key.
	cfg.Secret = []byte(strings.TrimSpace(os.Getenv(SecretEnvKey)))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
