package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigFromEnv_MissingSecret(t *testing.T) {
	t.Setenv(SecretEnvKey, "")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
}

func TestLoadConfigFromEnv_ShortSecret(t *testing.T) {
	t.Setenv(SecretEnvKey, "too-short")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
}

func TestLoadConfigFromEnv_InvalidTTL(t *testing.T) {
	t.Setenv(SecretEnvKey, strings.Repeat("k", 32))
	t.Setenv("FOLIO_AUTH_TOKEN_TTL", "-1h")
	if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestLoadConfigFromEnv_Valid(t *testing.T) {
	t.Setenv(SecretEnvKey, "  "+strings.Repeat("k", 48)+"  ")
	t.Setenv("FOLIO_AUTH_TOKEN_TTL", "24h")
	t.Setenv("FOLIO_AUTH_ISSUER", "folio-test")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Secret) != 48 {
		t.Fatalf("secret not trimmed: %d bytes", len(cfg.Secret))
	}
	if cfg.TTL != 24*time.Hour {
		t.Fatalf("ttl mismatch: %v", cfg.TTL)
	}
	if cfg.Issuer != "folio-test" {
		t.Fatalf("issuer mismatch: %q", cfg.Issuer)
	}
}
