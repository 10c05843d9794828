package service

import (
	"time"

	"customerlens/internal/platform/config"
)

// Config tunes ingest
type Config struct {
	// Workers bounds the normalization pool, 0 means GOMAXPROCS
	Workers int
	// Batch is the number of customers per COPY and per mirror insert
	Batch int
	// Retries is the total attempts for a retryable storage failure
	Retries   int
	RetryBase time.Duration
	// StatementTimeout is set on every ingest and read transaction
	StatementTimeout time.Duration
	ListLimit        int
}

// DefaultConfig is used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Batch:            1000,
		Retries:          4,
		RetryBase:        200 * time.Millisecond,
		StatementTimeout: 30 * time.Second,
		ListLimit:        100,
	}
}

// ConfigFromEnv reads CORE_INGEST_*
func ConfigFromEnv(root config.Conf) Config {
	c := root.Prefix("CORE_INGEST_")
	d := DefaultConfig()
	return Config{
		Workers:          c.MayIntIn("WORKERS", d.Workers, 0, 256),
		Batch:            c.MayIntIn("BATCH", d.Batch, 1, 100_000),
		Retries:          c.MayIntIn("RETRIES", d.Retries, 1, 20),
		RetryBase:        c.MayDuration("RETRY_BASE", d.RetryBase),
		StatementTimeout: c.MayDuration("STATEMENT_TIMEOUT", d.StatementTimeout),
		ListLimit:        c.MayIntIn("LIST_LIMIT", d.ListLimit, 1, 10_000),
	}
}
