package session

import (
	"folio/cmd/identity"
	"folio/cmd/security/token"
)

// Kind tags an Outcome.
type Kind uint8

const (
	KindAnonymousNoToken Kind = iota
	KindAnonymousInvalidToken
	KindAuthenticated
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticated:
		return "authenticated"
	case KindAnonymousInvalidToken:
		return "anonymous_invalid_token"
	default:
		return "anonymous_no_token"
	}
}

// Identity is the request-scoped principal. User is set only by CrossCheck.
type Identity struct {
	Claims token.Claims
	User   *identity.User
}

// UserID is the token subject.
func (i Identity) UserID() string { return i.Claims.Subject }

// Outcome is the result of resolving a session cookie. The zero value is
// AnonymousNoToken.
type Outcome struct {
	kind     Kind
	identity Identity
	reason   string
}

func Authenticated(id Identity) Outcome {
	return Outcome{kind: KindAuthenticated, identity: id}
}

func AnonymousNoToken() Outcome {
	return Outcome{kind: KindAnonymousNoToken}
}

func AnonymousInvalidToken(reason string) Outcome {
	return Outcome{kind: KindAnonymousInvalidToken, reason: reason}
}

func (o Outcome) Kind() Kind { return o.kind }

// Authenticated is the only check a handler needs before trusting Identity.
func (o Outcome) Authenticated() bool { return o.kind == KindAuthenticated }

// Identity returns the principal and true only for Authenticated outcomes.
func (o Outcome) Identity() (Identity, bool) {
	if o.kind != KindAuthenticated {
		return Identity{}, false
	}
	return o.identity, true
}

// Reason is the diagnostic cause of an AnonymousInvalidToken outcome.
// Never send it to clients.
func (o Outcome) Reason() string { return o.reason }
