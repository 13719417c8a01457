package gate

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"folio/cmd/security/token"
)

// TokenVerifier is satisfied by *token.Codec. The gate needs nothing else.
type TokenVerifier interface {
	Verify(raw string, now time.Time) (token.Claims, error)
}

// Observer sees every decision the middleware applies.
type Observer func(r *http.Request, d Decision)

type options struct {
	log     *slog.Logger
	now     func() time.Time
	observe Observer
}

// Option configures Middleware.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithObserver(fn Observer) Option { return func(o *options) { o.observe = fn } }

// Middleware classifies each request and answers redirects with 307.
// Only the cookie signature and expiry are checked.
func Middleware(tokens TokenVerifier, cfg Config, opts ...Option) func(http.Handler) http.Handler {
	o := options{log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := CanonicalPath(r.URL.Path)
			if path != r.URL.Path {
				// Downstream sees the path that was classified.
				r = withPath(r, path)
			}
			if cfg.skipped(path) {
				next.ServeHTTP(w, r)
				return
			}

			d := cfg.Classify(path, hasValidToken(r, cfg.CookieName, tokens, o.now()))
			if o.observe != nil {
				o.observe(r, d)
			}

			if d.Action == Allow {
				next.ServeHTTP(w, r)
				return
			}

			o.log.Debug("gate.redirect", "path", path, "action", d.Action.String())
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
		})
	}
}

func withPath(r *http.Request, p string) *http.Request {
	r2 := r.Clone(r.Context())
	r2.URL.Path = p
	r2.URL.RawPath = ""
	return r2
}

func hasValidToken(r *http.Request, name string, tokens TokenVerifier, now time.Time) bool {
	c, err := r.Cookie(name)
	if err != nil {
		return false
	}
	raw := strings.TrimSpace(c.Value)
	if raw == "" {
		return false
	}
	_, err = tokens.Verify(raw, now)
	return err == nil
}
