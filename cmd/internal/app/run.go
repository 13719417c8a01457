package app

import (
	"context"
	"os/signal"
	"syscall"
)

// Serve is the entrypoint behind `folio serve`. It returns an error instead
// of exiting so deferred cleanup runs.
func Serve(ctx context.Context) error {
	cfg := LoadConfig()
	log := NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := New(ctx, cfg, log)
	if err != nil {
		log.Error("server.init.fail", "err", err)
		return err
	}
	return a.Run(ctx)
}

// MigrateUp is the entrypoint behind `folio migrate`.
func MigrateUp(ctx context.Context) error {
	cfg := LoadConfig()
	return Migrate(ctx, cfg.DatabaseURL, NewLogger(cfg.LogLevel, cfg.LogFormat))
}
