package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"folio/cmd/identity"
	"folio/cmd/security/token"
)

// Mode selects how much work Resolve does after the signature checks out.
type Mode uint8

const (
	// TokenOnly trusts a verified token. No I/O.
	TokenOnly Mode = iota
	// CrossCheck also consults the revocation list and the user store.
	CrossCheck
)

func (m Mode) String() string {
	if m == CrossCheck {
		return "cross_check"
	}
	return "token_only"
}

// TokenVerifier is satisfied by *token.Codec.
type TokenVerifier interface {
	Verify(raw string, now time.Time) (token.Claims, error)
}

// UserLookup is the read-only slice of identity.Store the resolver needs.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (identity.User, error)
}

// Observer is called once per resolution.
type Observer func(mode Mode, o Outcome)

// Resolver turns a cookie value into an Outcome. Safe for concurrent use.
type Resolver struct {
	cfg      Config
	tokens   TokenVerifier
	users    UserLookup
	denylist Denylist
	log      *slog.Logger
	now      func() time.Time
	observe  Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDenylist enables revocation checks in CrossCheck mode.
func WithDenylist(d Denylist) Option { return func(r *Resolver) { r.denylist = d } }

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func WithObserver(o Observer) Option { return func(r *Resolver) { r.observe = o } }

func NewResolver(cfg Config, tokens TokenVerifier, users UserLookup, opts ...Option) (*Resolver, error) {
	if tokens == nil || users == nil {
		return nil, ErrMissingDependency
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultConfig().LookupTimeout
	}

	r := &Resolver{
		cfg:    cfg,
		tokens: tokens,
		users:  users,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// ResolveRequest reads the auth-token cookie from r.
func (r *Resolver) ResolveRequest(req *http.Request, mode Mode) Outcome {
	c, err := req.Cookie(CookieName)
	if err != nil {
		return r.done(mode, AnonymousNoToken())
	}
	return r.Resolve(req.Context(), c.Value, mode)
}

// Resolve verifies raw and, in CrossCheck mode, confirms the subject still
// exists and is active. Store errors and timeouts resolve to
// AnonymousInvalidToken.
func (r *Resolver) Resolve(ctx context.Context, raw string, mode Mode) Outcome {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return r.done(mode, AnonymousNoToken())
	}

	claims, err := r.tokens.Verify(raw, r.now())
	if err != nil {
		reason := token.ReasonOf(err)
		if reason == "" {
			reason = token.ReasonMalformed
		}
		r.log.Debug("session.token.invalid", "reason", reason, "mode", mode.String())
		return r.done(mode, AnonymousInvalidToken(reason))
	}

	if mode == TokenOnly {
		return r.done(mode, Authenticated(Identity{Claims: claims}))
	}

	lctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()

	if r.denylist != nil {
		revoked, err := r.denylist.IsRevoked(lctx, claims.ID)
		if err != nil {
			r.log.Error("session.revocation.check.fail", "user_id", claims.Subject, "err", err)
			return r.done(mode, AnonymousInvalidToken(ReasonRevocationFailed))
		}
		if revoked {
			r.log.Info("session.token.revoked", "user_id", claims.Subject)
			return r.done(mode, AnonymousInvalidToken(ReasonRevoked))
		}
	}

	u, err := r.users.GetUserByID(lctx, claims.Subject)
	switch {
	case err == nil:
	case identity.IsNotFound(err), identity.IsInvalidInput(err):
		r.log.Info("session.user.missing", "user_id", claims.Subject)
		return r.done(mode, AnonymousInvalidToken(ReasonUserNotFound))
	case errors.Is(err, context.DeadlineExceeded):
		r.log.Error("session.user.lookup.timeout", "user_id", claims.Subject, "timeout", r.cfg.LookupTimeout)
		return r.done(mode, AnonymousInvalidToken(ReasonLookupTimeout))
	default:
		r.log.Error("session.user.lookup.fail", "user_id", claims.Subject, "err", err)
		return r.done(mode, AnonymousInvalidToken(ReasonLookupFailed))
	}

	if !u.IsActive {
		r.log.Info("session.user.inactive", "user_id", u.ID)
		return r.done(mode, AnonymousInvalidToken(ReasonUserInactive))
	}

	return r.done(mode, Authenticated(Identity{Claims: claims, User: &u}))
}

// Revoke puts the token's jti on the revocation list until it expires.
// Without a configured denylist it is a no-op.
func (r *Resolver) Revoke(ctx context.Context, claims token.Claims) error {
	if r.denylist == nil || claims.ID == "" {
		return nil
	}
	lctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
	defer cancel()
	return r.denylist.Revoke(lctx, claims.ID, claims.ExpiresAt, r.now())
}

func (r *Resolver) done(mode Mode, o Outcome) Outcome {
	if r.observe != nil {
		r.observe(mode, o)
	}
	return o
}
