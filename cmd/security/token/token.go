package token

import (
	"errors"
	"maps"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// maxTokenBytes bounds the input accepted by Verify.
const maxTokenBytes = 8 << 10

// Claims is the identity envelope carried by a session token.
type Claims struct {
	Subject string
	Email   string
	Extra   map[string]string

	ID        string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Email string            `json:"email,omitempty"`
	Extra map[string]string `json:"ext,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 session tokens under a single secret.
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewCodec builds a Codec from cfg. It never falls back to a default secret.
func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Codec{
		secret: secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
	}, nil
}

// TTL returns the validity window applied to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for in.Subject. Claims carry second precision:
// IssuedAt is now truncated and ExpiresAt is now+TTL rounded up, so a token
// is never valid for less than TTL. A random ID is assigned when in.ID is
// empty. The returned Claims are exactly what Verify will report for the token.
func (c *Codec) Issue(in Claims, now time.Time) (string, Claims, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return "", Claims{}, ErrInvalidClaims
	}
	if now.IsZero() {
		now = time.Now()
	}

	// NumericDate has second precision.
	iat := now.UTC().Truncate(time.Second)
	exp := now.UTC().Add(c.ttl)
	if t := exp.Truncate(time.Second); !t.Equal(exp) {
		exp = t.Add(time.Second)
	}

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}

	out := Claims{
		Subject:   in.Subject,
		Email:     in.Email,
		Extra:     cloneExtra(in.Extra),
		ID:        id,
		Issuer:    c.issuer,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Email: out.Email,
		Extra: out.Extra,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    out.Issuer,
			Subject:   out.Subject,
			ID:        out.ID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, out, nil
}

// Verify checks signature, algorithm, issuer and expiry of raw at time now.
// A token is valid for now in [IssuedAt, ExpiresAt).
//
// Any failure returns an InvalidTokenError, which matches ErrInvalidToken.
func (c *Codec) Verify(raw string, now time.Time) (Claims, error) {
	if raw == "" || len(raw) > maxTokenBytes {
		return Claims{}, InvalidTokenError{Reason: ReasonMalformed}
	}
	if now.IsZero() {
		now = time.Now()
	}

	// Fresh parser per call; options capture now.
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var jc jwtClaims
	if _, err := p.ParseWithClaims(raw, &jc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}); err != nil {
		return Claims{}, InvalidTokenError{Reason: classify(err)}
	}

	if jc.Subject == "" || jc.ID == "" || jc.IssuedAt == nil || jc.ExpiresAt == nil {
		return Claims{}, InvalidTokenError{Reason: ReasonClaims}
	}

	return Claims{
		Subject:   jc.Subject,
		Email:     jc.Email,
		Extra:     jc.Extra,
		ID:        jc.ID,
		Issuer:    jc.Issuer,
		IssuedAt:  jc.IssuedAt.UTC(),
		ExpiresAt: jc.ExpiresAt.UTC(),
	}, nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ReasonIssuer
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	default:
		return ReasonClaims
	}
}

func cloneExtra(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
