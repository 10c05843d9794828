package store

import (
	"context"
	"fmt"
	"time"

	"customerlens/internal/platform/logger"
	chx "customerlens/internal/platform/store/ch"
	"customerlens/internal/platform/store/pg"
)

// backoff seams
var (
	sleep          = time.Sleep
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
)

// pingWithRetry pings until it succeeds, ctx ends or attempts run out
func pingWithRetry(ctx context.Context, name string, attempts int, timeout time.Duration, ping func(context.Context) error, log logger.Logger) error {
	if attempts <= 0 {
		attempts = 20
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	var lastErr error
	wait := backoffStart
	for i := 0; i < attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = ping(pctx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug().Str("backend", name).Int("attempt", i+1).Err(lastErr).Msg("ping failed; backing off")
		sleep(wait)
		wait = min(wait*2, backoffCeiling)
	}
	return fmt.Errorf("%s ping failed after %d attempts: %w", name, attempts, lastErr)
}

// openPG opens the pool and only publishes the adapter once it answers
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs}, tracer, nil)
	if err != nil {
		return nil, err
	}
	if err := pingWithRetry(ctx, "postgres", cfg.ConnectRetries, cfg.PingTimeout, p.Pool.Ping, log); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config, log logger.Logger) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:        cfg.CH.URL,
		ClientName: cfg.CH.ClientName,
		ClientTag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, err
	}
	if err := pingWithRetry(ctx, "clickhouse", cfg.PG.ConnectRetries, cfg.PG.PingTimeout, c.Ping, log); err != nil {
		_ = c.Close()
		return nil, err
	}
	return newCHAdapter(c), nil
}
