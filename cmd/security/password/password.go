package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2Version = argon2.Version

// ErrInvalidHash means a stored digest could not be parsed or has
// out-of-bounds parameters.
var ErrInvalidHash = errors.New("invalid password hash")

// Hash validates the plaintext against the policy and returns a fresh
// Argon2id digest with a random salt.
func (c Config) Hash(plain string) (string, error) {
	if err := c.Validate(plain); err != nil {
		return "", err
	}
	return c.hash(plain)
}

func (c Config) hash(plain string) (string, error) {
	salt := make([]byte, c.Params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(plain),
		salt,
		c.Params.Iterations,
		c.Params.MemoryKiB,
		c.Params.Parallelism,
		c.Params.KeyLength,
	)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Version,
		c.Params.MemoryKiB,
		c.Params.Iterations,
		c.Params.Parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches digest.
// A mismatch is (false, nil); a malformed or out-of-bounds digest is
// (false, ErrInvalidHash).
func (c Config) Verify(digest, plain string) (bool, error) {
	if isBcrypt(digest) {
		return verifyBcrypt(digest, plain)
	}

	params, salt, expected, err := decode(digest)
	if err != nil {
		return false, err
	}
	if !withinReasonableBounds(params) {
		return false, ErrInvalidHash
	}

	key := argon2.IDKey(
		[]byte(plain),
		salt,
		params.Iterations,
		params.MemoryKiB,
		params.Parallelism,
		params.KeyLength,
	)
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

// NeedsRehash is true for bcrypt digests and for Argon2id digests whose
// cost differs from the current config. Malformed digests report false.
func (c Config) NeedsRehash(digest string) bool {
	if isBcrypt(digest) {
		return true
	}
	params, _, _, err := decode(digest)
	if err != nil {
		return false
	}
	return params != c.Params
}

// Rehash hashes plain under the current cost without applying the policy,
// so a password accepted under an older policy can still be upgraded.
func (c Config) Rehash(plain string) (string, error) {
	return c.hash(plain)
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

func verifyBcrypt(digest, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}

// Ceilings on cost read from a digest or the environment. They are absolute
// so lowering the configured cost never invalidates stored digests.
const (
	maxMemoryKiB  = 1024 * 1024
	maxIterations = 20
)

func withinReasonableBounds(got Argon2idParams) bool {
	if got.MemoryKiB > maxMemoryKiB || got.Iterations > maxIterations {
		return false
	}
	if got.SaltLength < 8 || got.SaltLength > 64 {
		return false
	}
	if got.KeyLength < 16 || got.KeyLength > 128 {
		return false
	}
	return true
}

func decode(encoded string) (Argon2idParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2idParams{}, nil, nil, ErrInvalidHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2Version) {
		return Argon2idParams{}, nil, nil, ErrInvalidHash
	}

	mem, it, par, ok := parseCost(parts[3])
	if !ok {
		return Argon2idParams{}, nil, nil, ErrInvalidHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Argon2idParams{}, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil {
		return Argon2idParams{}, nil, nil, ErrInvalidHash
	}
	if len(salt) > 1024 || len(key) > 1024 {
		return Argon2idParams{}, nil, nil, ErrInvalidHash
	}

	return Argon2idParams{
		MemoryKiB:   mem,
		Iterations:  it,
		Parallelism: par,
		SaltLength:  uint32(len(salt)), // #nosec G115 -- bounded above.
		KeyLength:   uint32(len(key)),  // #nosec G115 -- bounded above.
	}, salt, key, nil
}

// parseCost reads "m=<n>,t=<n>,p=<n>" in that order.
func parseCost(s string) (mem, it uint32, par uint8, ok bool) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return 0, 0, 0, false
	}
	want := [3]string{"m=", "t=", "p="}
	var vals [3]uint64
	for i, f := range fields {
		raw, found := strings.CutPrefix(f, want[i])
		if !found {
			return 0, 0, 0, false
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			return 0, 0, 0, false
		}
		vals[i] = v
	}
	if vals[2] > 255 {
		return 0, 0, 0, false
	}
	return uint32(vals[0]), uint32(vals[1]), uint8(vals[2]), true
}
