package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"folio/cmd/internal/auth/gate"
)

// routeRegistrar is implemented by authapi.Handler and portfolio.Handler.
type routeRegistrar interface {
	Register(r chi.Router)
}

type routerDeps struct {
	log     Logger
	cfg     Config
	metrics *Metrics
	pool    *pgxpool.Pool

	gate   func(http.Handler) http.Handler
	routes []routeRegistrar
}

// newRouter orders middleware outermost first: request id, panic recovery,
// logging, headers, CORS, then the edge classifier in front of every route.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler { return WithRequestLogging(next, d.log, d.metrics) })
	r.Use(WithSecurityHeaders)
	r.Use(func(next http.Handler) http.Handler { return WithCORS(next, d.cfg, d.log) })
	if d.gate != nil {
		r.Use(d.gate)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.cfg.ReadinessRequireDB && d.pool == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		if d.pool != nil {
			if err := PingDB(r.Context(), d.pool, 2*time.Second); err != nil {
				d.log.Info("readyz.db.not_ready", "err", err)
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if d.metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.metrics.Handler())
	}

	for _, rr := range d.routes {
		rr.Register(r)
	}

	if d.cfg.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(d.cfg.WebDir)))
	}

	return r
}

// gateMiddleware adapts gate.Middleware to the router's logger and metrics.
func gateMiddleware(tokens gate.TokenVerifier, cfg gate.Config, log Logger, m *Metrics) func(http.Handler) http.Handler {
	opts := []gate.Option{gate.WithLogger(log)}
	if m != nil {
		opts = append(opts, gate.WithObserver(m.GateObserver()))
	}
	return gate.Middleware(tokens, cfg, opts...)
}
