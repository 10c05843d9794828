// Package service contains the datasets workflows
package service

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"customerlens/internal/core/table"
	"customerlens/internal/modkit/repokit"
	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/logger"
	"customerlens/internal/platform/store"
	"customerlens/internal/platform/validate"
	"customerlens/internal/services/datasets/domain"
	"customerlens/internal/services/datasets/repo"

	"github.com/google/uuid"
)

// Service defines the datasets service contract
type Service interface {
	domain.ServicePort
	Migrate(ctx context.Context) error
}

// Svc implements the datasets service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]
	mirror repo.Mirror
	cfg    Config

	now   func() time.Time
	newID func() uuid.UUID

	ensureMu sync.Mutex
	ensured  bool
}

// seams
var (
	sleep  = sleepCtx
	jitter = rand.Int63n
)

// New constructs a datasets service, mirror may be nil
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], mirror repo.Mirror, cfg Config) *Svc {
	if db == nil {
		panic("datasets.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("datasets.Service requires a non nil Repo binder")
	}
	if cfg.Batch <= 0 {
		cfg.Batch = DefaultConfig().Batch
	}
	return &Svc{
		db:     repokit.WithBeginHooks(db, repokit.StatementTimeout(cfg.StatementTimeout)),
		binder: binder,
		mirror: mirror,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.New,
	}
}

// Migrate applies the postgres schema and, when mirrored, the clickhouse table
func (s *Svc) Migrate(ctx context.Context) error {
	if err := repo.Migrate(ctx, s.db); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.ensureMirror(ctx); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("clickhouse mirror schema not applied")
		}
	}
	return nil
}

// Ingest reads, normalizes and stores r as one dataset
// the dataset row and every customer batch commit together
func (s *Svc) Ingest(ctx context.Context, in domain.IngestInput, r io.Reader) (domain.Dataset, error) {
	if err := validate.Struct(in); err != nil {
		return domain.Dataset{}, err
	}
	tb, err := table.FromCSV(r, in.Columns)
	if err != nil {
		return domain.Dataset{}, err
	}
	if tb, err = tb.Normalize(ctx, table.NormalizeOptions{Workers: s.cfg.Workers}); err != nil {
		return domain.Dataset{}, err
	}
	sum, err := tb.Summarize()
	if err != nil {
		return domain.Dataset{}, err
	}
	cs, err := tb.Customers()
	if err != nil {
		return domain.Dataset{}, err
	}

	d := domain.Dataset{
		ID:        s.newID(),
		Name:      in.Name,
		Columns:   tb.Columns(),
		Names:     tb.Names(),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	d.SetSummary(sum)

	rows := make([]domain.CustomerRow, len(cs))
	for i, c := range cs {
		rows[i] = domain.CustomerRow{DatasetID: d.ID, Ord: i, Customer: c}
	}
	batches := store.Batches(rows, s.cfg.Batch)

	ctx = logger.WithDataset(ctx, d.ID.String())
	log := logger.C(ctx)
	start := time.Now()

	err = s.withRetry(ctx, "ingest", func() error {
		return repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
			rp := repokit.MustBind(s.binder, q)
			if err := rp.InsertDataset(ctx, d); err != nil {
				return err
			}
			for _, b := range batches {
				if _, err := rp.CopyCustomers(ctx, b); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		log.Error().Err(err).Str("name", d.Name).Msg("dataset ingest failed")
		return domain.Dataset{}, err
	}

	s.mirrorBatches(ctx, batches)
	log.Info().
		Str("name", d.Name).
		Int("rows", d.Rows).
		Int("known_ages", d.KnownAges).
		Int("batches", len(batches)).
		Dur("took", time.Since(start)).
		Msg("dataset ingested")
	return d, nil
}

// Get returns one dataset
func (s *Svc) Get(ctx context.Context, id uuid.UUID) (domain.Dataset, error) {
	return s.binder.Bind(s.db).GetDataset(ctx, id)
}

// List returns the newest datasets first
func (s *Svc) List(ctx context.Context) ([]domain.Dataset, error) {
	return s.binder.Bind(s.db).ListDatasets(ctx, s.cfg.ListLimit)
}

// Table rebuilds the normalized table of a stored dataset
func (s *Svc) Table(ctx context.Context, id uuid.UUID) (*table.Table, error) {
	var tb *table.Table
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		rp := repokit.MustBind(s.binder, q)
		d, err := rp.GetDataset(ctx, id)
		if err != nil {
			return err
		}
		cs, err := rp.Customers(ctx, id)
		if err != nil {
			return err
		}
		tb, err = repo.TableOf(d, cs)
		return err
	})
	return tb, err
}

// mirrorBatches copies stored batches to the mirror, failures are logged only
func (s *Svc) mirrorBatches(ctx context.Context, batches [][]domain.CustomerRow) {
	if s.mirror == nil {
		return
	}
	log := logger.C(ctx)
	if err := s.ensureMirror(ctx); err != nil {
		log.Warn().Err(err).Msg("clickhouse mirror unavailable, skipping")
		return
	}
	for i, b := range batches {
		if err := s.mirror.Write(ctx, b); err != nil {
			log.Warn().Err(err).Int("batch", i).Int("batches", len(batches)).Msg("clickhouse mirror write failed")
			return
		}
	}
}

// ensureMirror applies the mirror schema until it succeeds once, a failed attempt is retried on the next ingest
func (s *Svc) ensureMirror(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.ensured {
		return nil
	}
	if err := s.mirror.Ensure(ctx); err != nil {
		return err
	}
	s.ensured = true
	return nil
}

// withRetry retries fn on retryable storage errors with jittered exponential backoff capped at 10s
func (s *Svc) withRetry(ctx context.Context, op string, fn func() error) error {
	attempts := max(s.cfg.Retries, 1)
	base := s.cfg.RetryBase
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	var last error
	for i := range attempts {
		last = fn()
		if last == nil {
			return nil
		}
		if !perr.Retryable(last) || i == attempts-1 {
			break
		}
		d := min(base<<i, 10*time.Second)
		wait := d/2 + time.Duration(jitter(int64(d/2)+1))
		logger.C(ctx).Debug().Err(last).Str("op", op).Int("attempt", i+1).Dur("wait", wait).Msg("retrying")
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
