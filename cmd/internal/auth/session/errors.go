package session

import "errors"

var (
	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")

	// ErrMissingDependency is returned by NewResolver when a collaborator is nil.
	ErrMissingDependency = errors.New("session: missing dependency")
)

// Reasons attached to AnonymousInvalidToken outcomes. Token codec reasons
// (malformed, signature, expired, ...) pass through unchanged.
const (
	ReasonRevoked          = "revoked"
	ReasonRevocationFailed = "revocation_check_failed"
	ReasonUserNotFound     = "user_not_found"
	ReasonUserInactive     = "user_inactive"
	ReasonLookupFailed     = "lookup_failed"
	ReasonLookupTimeout    = "lookup_timeout"
)
