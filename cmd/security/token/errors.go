package token

import "errors"

// Public, stable errors for callers.
var (
	// ErrInvalidToken is the single outcome for any token that fails verification.
	ErrInvalidToken = errors.New("invalid token")

	ErrSecretMissing  = errors.New("token secret missing")
	ErrSecretTooShort = errors.New("token secret too short")
	ErrInvalidClaims  = errors.New("invalid token claims")
	ErrConfig         = errors.New("invalid token config")
)

// Reasons recorded on InvalidTokenError. They are meant for logs and metrics.
const (
	ReasonMalformed = "malformed"
	ReasonSignature = "signature"
	ReasonExpired   = "expired"
	ReasonIssuer    = "issuer"
	ReasonClaims    = "claims"
)

// InvalidTokenError carries the internal failure reason of a verification.
//
// Its Error() text is identical for every reason so that it can never leak
// through an error message by accident. Use errors.As to read Reason.
type InvalidTokenError struct {
	Reason string
}

func (e InvalidTokenError) Error() string { return ErrInvalidToken.Error() }

func (e InvalidTokenError) Unwrap() error { return ErrInvalidToken }

// ReasonOf returns the failure reason recorded on err, or "" when err is not
// a token verification failure.
func ReasonOf(err error) string {
	var ite InvalidTokenError
	if errors.As(err, &ite) {
		return ite.Reason
	}
	return ""
}
