package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/cmd/identity"
	"folio/cmd/internal/auth/gate"
	"folio/cmd/internal/auth/session"
	"folio/cmd/security/password"
	"folio/cmd/security/token"
)

// TokenIssuer is satisfied by *token.Codec.
type TokenIssuer interface {
	Issue(in token.Claims, now time.Time) (string, token.Claims, error)
	TTL() time.Duration
}

// SessionResolver is satisfied by *session.Resolver.
type SessionResolver interface {
	ResolveRequest(r *http.Request, mode session.Mode) session.Outcome
	Revoke(ctx context.Context, claims token.Claims) error
}

// PasswordHasher is satisfied by password.Config.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Rehash(plain string) (string, error)
	Verify(digest, plain string) (bool, error)
	NeedsRehash(digest string) bool
}

// Handler serves /api/auth/*.
type Handler struct {
	log *slog.Logger
	cfg Config

	users    identity.Store
	tokens   TokenIssuer
	sessions SessionResolver
	hasher   PasswordHasher
	auditLog AuditLog
	now      func() time.Time

	dummyHash string
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithAuditLog enables the audit trail and the login throttles built on it.
func WithAuditLog(a AuditLog) HandlerOption {
	return func(h *Handler) { h.auditLog = a }
}

func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

func NewHandler(log *slog.Logger, cfg Config, users identity.Store, tokens TokenIssuer, sessions SessionResolver, hasher PasswordHasher, opts ...HandlerOption) (*Handler, error) {
	if users == nil || tokens == nil || sessions == nil || hasher == nil {
		return nil, errors.New("authapi: missing dependency")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}
	if cfg.DefaultRedirect == "" {
		cfg.DefaultRedirect = "/dashboard"
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		hasher:   hasher,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	// Verified against when the email is unknown so both paths cost the same.
	dummy, err := hasher.Rehash("folio-timing-equalizer")
	if err != nil {
		return nil, err
	}
	h.dummyHash = dummy

	return h, nil
}

// Register mounts the auth routes under /api/auth.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.handleSignup)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.SignupEnabled {
		writeError(w, http.StatusForbidden, codeSignupDisabled, "signup is disabled")
		return
	}

	var req signupRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid request body")
		return
	}
	if !identity.ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, codeInvalidEmail, "a valid email is required")
		return
	}

	digest, err := h.hasher.Hash(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooShort),
			errors.Is(err, password.ErrPasswordTooLong),
			errors.Is(err, password.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, codeWeakPassword, err.Error())
		default:
			h.log.Error("auth.signup.hash.fail", "err", err)
			writeError(w, http.StatusInternalServerError, codeServerError, "internal error")
		}
		return
	}

	ctx := r.Context()
	now := h.now()
	u, err := h.users.CreateUser(ctx, identity.CreateUserInput{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: digest,
		Now:          now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, codeEmailTaken, "an account with this email already exists")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, codeInvalidRequest, "invalid signup request")
		default:
			h.log.Error("auth.signup.create.fail", "err", err)
			writeError(w, http.StatusInternalServerError, codeServerError, "internal error")
		}
		return
	}

	exp, ok := h.startSession(w, u, now)
	if !ok {
		return
	}

	h.audit(ctx, AuditEvent{
		Action:     actionSignup,
		UserID:     &u.ID,
		Identifier: u.EmailNorm,
		IP:         clientIP(r, h.cfg.TrustProxy),
		UserAgent:  r.UserAgent(),
	})
	h.log.Info("auth.signup.ok", "user_id", u.ID)

	writeJSON(w, http.StatusCreated, loginResponse{
		User:       toUserResponse(u),
		RedirectTo: "/onboarding",
		ExpiresAt:  exp,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidJSON, "invalid request body")
		return
	}
	identifier := identity.NormalizeEmail(req.Email)
	if identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "email and password are required")
		return
	}

	ctx := r.Context()
	now := h.now()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := r.UserAgent()

	if blocked, retry, err := h.checkLoginIPThrottle(ctx, ip, now); err != nil {
		h.log.Error("auth.login.throttle_ip.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, codeServerBusy, "please retry later")
		return
	} else if blocked {
		h.audit(ctx, AuditEvent{Action: actionLoginRateLimited, Identifier: identifier, IP: ip, UserAgent: ua})
		writeRateLimited(w, retry)
		return
	}
	if blocked, retry, err := h.checkLoginIdentifierThrottle(ctx, identifier, now); err != nil {
		h.log.Error("auth.login.throttle_identifier.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, codeServerBusy, "please retry later")
		return
	} else if blocked {
		h.audit(ctx, AuditEvent{Action: actionLoginRateLimited, Identifier: identifier, IP: ip, UserAgent: ua})
		writeRateLimited(w, retry)
		return
	}

	acct, err := h.users.GetUserAuthByEmail(ctx, identifier)
	if err != nil {
		if !identity.IsNotFound(err) && !identity.IsInvalidInput(err) {
			h.log.Error("auth.login.lookup.fail", "err", err)
			writeError(w, http.StatusInternalServerError, codeServerError, "internal error")
			return
		}
		_, _ = h.hasher.Verify(h.dummyHash, req.Password)
		h.loginFailed(ctx, nil, identifier, r, "not_found")
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials")
		return
	}

	ok, err := h.hasher.Verify(acct.PasswordHash, req.Password)
	if err != nil || !ok {
		if err != nil {
			h.log.Error("auth.login.verify.fail", "err", err, "user_id", acct.User.ID)
		}
		h.loginFailed(ctx, &acct.User.ID, identifier, r, "bad_password")
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials")
		return
	}
	if !acct.User.IsActive {
		h.loginFailed(ctx, &acct.User.ID, identifier, r, "inactive")
		writeError(w, http.StatusForbidden, codeAccountInactive, "account is deactivated")
		return
	}

	if h.hasher.NeedsRehash(acct.PasswordHash) {
		h.upgradeHash(ctx, acct.User.ID, req.Password, now)
	}

	exp, ok := h.startSession(w, acct.User, now)
	if !ok {
		return
	}

	h.audit(ctx, AuditEvent{
		Action:     actionLoginSuccess,
		UserID:     &acct.User.ID,
		Identifier: identifier,
		IP:         ip,
		UserAgent:  ua,
	})

	writeJSON(w, http.StatusOK, loginResponse{
		User:       toUserResponse(acct.User),
		RedirectTo: gate.SafeRedirectTarget(req.Redirect, h.cfg.DefaultRedirect),
		ExpiresAt:  exp,
	})
}

// handleLogout always clears the cookie; a verifiable token is also revoked.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	out := h.sessions.ResolveRequest(r, session.TokenOnly)
	if id, ok := out.Identity(); ok {
		if err := h.sessions.Revoke(r.Context(), id.Claims); err != nil {
			h.log.Error("auth.logout.revoke.fail", "err", err, "user_id", id.UserID())
		}
		uid := id.UserID()
		h.audit(r.Context(), AuditEvent{
			Action:    actionLogout,
			UserID:    &uid,
			IP:        clientIP(r, h.cfg.TrustProxy),
			UserAgent: r.UserAgent(),
		})
	}

	h.clearSessionCookie(w)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

// handleMe answers 401 {user:null} for every non-Authenticated outcome.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	out := h.sessions.ResolveRequest(r, session.CrossCheck)
	id, ok := out.Identity()
	if !ok || id.User == nil {
		if out.Kind() == session.KindAnonymousInvalidToken {
			h.log.Debug("auth.me.denied", "reason", out.Reason())
		}
		writeJSON(w, http.StatusUnauthorized, userEnvelope{User: nil})
		return
	}

	u := toUserResponse(*id.User)
	writeJSON(w, http.StatusOK, userEnvelope{User: &u})
}

func (h *Handler) startSession(w http.ResponseWriter, u identity.User, now time.Time) (time.Time, bool) {
	raw, claims, err := h.tokens.Issue(token.Claims{Subject: u.ID, Email: u.Email}, now)
	if err != nil {
		h.log.Error("auth.token.issue.fail", "err", err, "user_id", u.ID)
		writeError(w, http.StatusInternalServerError, codeServerError, "internal error")
		return time.Time{}, false
	}
	h.setSessionCookie(w, raw, claims.ExpiresAt)
	return claims.ExpiresAt, true
}

func (h *Handler) loginFailed(ctx context.Context, userID *string, identifier string, r *http.Request, reason string) {
	h.log.Info("auth.login.fail", "reason", reason)
	h.audit(ctx, AuditEvent{
		Action:     actionLoginFailed,
		UserID:     userID,
		Identifier: identifier,
		IP:         clientIP(r, h.cfg.TrustProxy),
		UserAgent:  strings.TrimSpace(r.UserAgent()),
		Meta:       map[string]any{"reason": reason},
	})
}

func (h *Handler) upgradeHash(ctx context.Context, userID, plain string, now time.Time) {
	digest, err := h.hasher.Rehash(plain)
	if err != nil {
		h.log.Error("auth.login.rehash.fail", "err", err, "user_id", userID)
		return
	}
	if err := h.users.UpdatePasswordHash(ctx, userID, digest, now); err != nil {
		h.log.Error("auth.login.rehash.store.fail", "err", err, "user_id", userID)
		return
	}
	h.log.Info("auth.login.rehash.ok", "user_id", userID)
}
