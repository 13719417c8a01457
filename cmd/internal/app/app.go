// Package app wires the folio server runtime: config, logging, storage,
// the auth layer and the HTTP router.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"folio/cmd/identity"
	authapi "folio/cmd/internal/auth/api"
	"folio/cmd/internal/auth/gate"
	"folio/cmd/internal/auth/session"
	"folio/cmd/internal/portfolio"
	"folio/cmd/security/password"
	"folio/cmd/security/token"
)

// App owns the HTTP handler and the connections behind it.
type App struct {
	cfg     Config
	log     Logger
	metrics *Metrics

	pool  *pgxpool.Pool
	redis *redis.Client

	handler http.Handler
}

// New builds a fully wired App. A missing or short signing secret is fatal.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	tokenCfg, err := ValidateSecurityConfig()
	if err != nil {
		return nil, err
	}
	codec, err := token.NewCodec(tokenCfg)
	if err != nil {
		return nil, err
	}
	hasher, err := password.FromEnv()
	if err != nil {
		return nil, err
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	gateCfg, err := gate.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	portfolioCfg, err := portfolio.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	authCfg := authapi.LoadConfigFromEnv()

	a := &App{cfg: cfg, log: log, metrics: NewMetrics()}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	var (
		users    identity.Store
		auditLog authapi.AuditLog
	)
	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			if err := Migrate(ctx, cfg.DatabaseURL, log); err != nil {
				return nil, err
			}
		}
		a.pool, err = NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		pg, err := identity.NewPostgresStore(a.pool)
		if err != nil {
			return nil, err
		}
		users = pg
		auditLog = authapi.NewPostgresAuditLog(a.pool, identity.DefaultSchema)
		log.Info("db.enabled.postgres_store")
	} else {
		users = identity.NewMemoryStore()
		auditLog = authapi.NewMemoryAuditLog(0)
		log.Info("db.disabled.inmemory_store")
	}

	var denylist session.Denylist
	if cfg.RedisURL != "" {
		a.redis, err = NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		denylist = session.NewRedisDenylist(a.redis, sessCfg.RevocationPrefix)
		log.Info("session.denylist.redis")
	} else {
		denylist = session.NewMemoryDenylist()
		log.Info("session.denylist.memory")
	}

	resolver, err := session.NewResolver(sessCfg, codec, users,
		session.WithDenylist(denylist),
		session.WithLogger(log),
		session.WithObserver(a.metrics.SessionObserver()),
	)
	if err != nil {
		return nil, err
	}

	authHandler, err := authapi.NewHandler(log, authCfg, users, codec, resolver, hasher,
		authapi.WithAuditLog(auditLog),
	)
	if err != nil {
		return nil, err
	}

	var objects portfolio.ObjectStore
	if portfolioCfg.S3Bucket != "" {
		objects, err = portfolio.NewS3Store(ctx, portfolioCfg)
		if err != nil {
			return nil, err
		}
		log.Info("portfolio.objects.s3", "bucket", portfolioCfg.S3Bucket)
	} else {
		objects = portfolio.NewMemoryStore()
		log.Info("portfolio.objects.memory")
	}
	portfolioHandler, err := portfolio.NewHandler(log, portfolioCfg, resolver, objects)
	if err != nil {
		return nil, err
	}

	a.handler = newRouter(routerDeps{
		log:     log,
		cfg:     cfg,
		metrics: a.metrics,
		pool:    a.pool,
		gate:    gateMiddleware(codec, gateCfg, log, a.metrics),
		routes:  []routeRegistrar{authHandler, portfolioHandler},
	})

	ok = true
	return a, nil
}

// Handler exposes the fully wrapped router.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves HTTP until ctx is cancelled or the listener fails.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.pool != nil, "redis_enabled", a.redis != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

// Close releases the pool and the redis client. Safe to call twice.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("redis.close.fail", "err", err)
		}
		a.redis = nil
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
