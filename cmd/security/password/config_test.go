package password

import (
	"errors"
	"os"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, b := range envBounds {
		_ = os.Unsetenv(b.key)
	}
	_ = os.Unsetenv("FOLIO_PASSWORD_REJECT_VERY_WEAK")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestFromEnv_Override(t *testing.T) {
	t.Setenv("FOLIO_PASSWORD_MIN_LEN", "10")
	t.Setenv("FOLIO_PASSWORD_MAX_LEN", "200")
	t.Setenv("FOLIO_PASSWORD_REJECT_VERY_WEAK", "false")
	t.Setenv("FOLIO_ARGON2_MEMORY_KIB", "32768")
	t.Setenv("FOLIO_ARGON2_ITERATIONS", "4")
	t.Setenv("FOLIO_ARGON2_PARALLELISM", "2")
	t.Setenv("FOLIO_ARGON2_SALT_LEN", "24")
	t.Setenv("FOLIO_ARGON2_KEY_LEN", "32")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Policy.MinLength != 10 || cfg.Policy.MaxLength != 200 || cfg.Policy.RejectVeryWeak {
		t.Fatalf("policy override failed: %+v", cfg.Policy)
	}
	if cfg.Params.MemoryKiB != 32768 || cfg.Params.Iterations != 4 || cfg.Params.Parallelism != 2 {
		t.Fatalf("argon2 override failed: %+v", cfg.Params)
	}
	if cfg.Params.SaltLength != 24 || cfg.Params.KeyLength != 32 {
		t.Fatalf("len override failed: %+v", cfg.Params)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"FOLIO_ARGON2_MEMORY_KIB":         "1024",
		"FOLIO_ARGON2_ITERATIONS":         "abc",
		"FOLIO_PASSWORD_REJECT_VERY_WEAK": "maybe",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := FromEnv(); !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestFromEnv_InvalidMinMax(t *testing.T) {
	t.Setenv("FOLIO_PASSWORD_MIN_LEN", "20")
	t.Setenv("FOLIO_PASSWORD_MAX_LEN", "10")

	if _, err := FromEnv(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
