package password

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

var ErrConfig = errors.New("invalid password config")

// Argon2idParams is the Argon2id cost. MemoryKiB is in KiB as argon2.IDKey expects.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy bounds accepted plaintexts.
type Policy struct {
	MinLength int
	MaxLength int
	// RejectVeryWeak turns on a small deny list of trivial passwords.
	RejectVeryWeak bool
}

// Config is immutable once built and safe to share across goroutines.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns interactive-login cost: 64 MiB, 3 passes.
func DefaultConfig() Config {
	lanes := runtime.NumCPU()
	if lanes < 1 {
		lanes = 1
	}
	if lanes > 4 {
		lanes = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024,
			Iterations:  3,
			Parallelism: uint8(lanes), // #nosec G115 -- clamped to [1..4].
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:      8,
			MaxLength:      256,
			RejectVeryWeak: true,
		},
	}
}

type envBound struct {
	key      string
	min, max uint64
	set      func(*Config, uint64)
}

var envBounds = []envBound{
	{"FOLIO_PASSWORD_MIN_LEN", 1, 1024, func(c *Config, v uint64) { c.Policy.MinLength = int(v) }},
	{"FOLIO_PASSWORD_MAX_LEN", 1, 4096, func(c *Config, v uint64) { c.Policy.MaxLength = int(v) }},
	{"FOLIO_ARGON2_MEMORY_KIB", 8 * 1024, maxMemoryKiB, func(c *Config, v uint64) { c.Params.MemoryKiB = uint32(v) }},
	{"FOLIO_ARGON2_ITERATIONS", 1, maxIterations, func(c *Config, v uint64) { c.Params.Iterations = uint32(v) }},
	{"FOLIO_ARGON2_PARALLELISM", 1, math.MaxUint8, func(c *Config, v uint64) { c.Params.Parallelism = uint8(v) }},
	{"FOLIO_ARGON2_SALT_LEN", 8, 64, func(c *Config, v uint64) { c.Params.SaltLength = uint32(v) }},
	{"FOLIO_ARGON2_KEY_LEN", 16, 64, func(c *Config, v uint64) { c.Params.KeyLength = uint32(v) }},
}

// FromEnv overlays FOLIO_PASSWORD_* and FOLIO_ARGON2_* onto DefaultConfig.
//
//   - FOLIO_PASSWORD_MIN_LEN, FOLIO_PASSWORD_MAX_LEN
//   - FOLIO_PASSWORD_REJECT_VERY_WEAK (bool)
//   - FOLIO_ARGON2_MEMORY_KIB, FOLIO_ARGON2_ITERATIONS, FOLIO_ARGON2_PARALLELISM
//   - FOLIO_ARGON2_SALT_LEN, FOLIO_ARGON2_KEY_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	for _, b := range envBounds {
		raw, ok := os.LookupEnv(b.key)
		if !ok {
			continue
		}
		v, err := parseBounded(raw, b.min, b.max)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, b.key, err)
		}
		b.set(&cfg, v)
	}

	if raw, ok := os.LookupEnv("FOLIO_PASSWORD_REJECT_VERY_WEAK"); ok {
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, fmt.Errorf("%w: FOLIO_PASSWORD_REJECT_VERY_WEAK: invalid boolean", ErrConfig)
		}
		cfg.Policy.RejectVeryWeak = v
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"%w: min_len(%d) > max_len(%d)",
			ErrConfig,
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func parseBounded(s string, minVal, maxVal uint64) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	if v < minVal || v > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return v, nil
}
