package table

import (
	"context"
	"runtime"

	"customerlens/internal/core/normalize"
	perr "customerlens/internal/platform/errors"

	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"
)

// NormalizeOptions bounds the worker pool, zero values pick defaults
type NormalizeOptions struct {
	// Workers caps concurrent partitions, 0 means GOMAXPROCS
	Workers int
	// Partition is the rows per task, 0 means 4096
	Partition int
}

const defaultPartition = 4096

// Normalize rewrites the age column to normalized tokens and sets the gender column
// partitions run on a bounded errgroup, each writes only its own index range so order is kept
// an existing gender column is overwritten
func (t *Table) Normalize(ctx context.Context, opt NormalizeOptions) (*Table, error) {
	for _, name := range []string{t.cols.Age, t.cols.Salutation} {
		if !t.Has(name) {
			return nil, perr.WithField(perr.Validationf("missing required column %q", name), name)
		}
	}
	ages := t.df.Col(t.cols.Age).Records()
	sals := t.df.Col(t.cols.Salutation).Records()

	n := len(ages)
	outAge := make([]string, n)
	outGender := make([]string, n)

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	part := opt.Partition
	if part <= 0 {
		part = defaultPartition
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += part {
		hi := min(lo+part, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				outAge[i] = normalize.NormalizeAge(ages[i]).String()
				outGender[i] = normalize.NormalizeGender(sals[i]).String()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "normalize")
	}

	df := t.df.
		Mutate(series.New(outAge, series.String, t.cols.Age)).
		Mutate(series.New(outGender, series.String, t.cols.Gender))
	if df.Err != nil {
		return nil, perr.Wrap(df.Err, perr.ErrorCodeUnknown, "normalize")
	}

	// passthrough cells are sanitized in place so stored and charted values match
	for _, name := range df.Names() {
		if name == t.cols.Age || name == t.cols.Gender || name == t.cols.Salutation {
			continue
		}
		cells := df.Col(name).Records()
		changed := false
		for i, c := range cells {
			if s := normalize.Sanitize(c); s != c {
				cells[i] = s
				changed = true
			}
		}
		if changed {
			df = df.Mutate(series.New(cells, series.String, name))
		}
	}
	return &Table{df: df, cols: t.cols, normalized: true}, nil
}

// Summary counts known ages and genders of a normalized table
type Summary struct {
	Rows      int
	KnownAges int
	Genders   map[normalize.Gender]int
}

// Summarize reads the normalized columns
func (t *Table) Summarize() (Summary, error) {
	if !t.normalized {
		return Summary{}, perr.Validationf("table is not normalized")
	}
	s := Summary{Rows: t.Len(), Genders: make(map[normalize.Gender]int, len(normalize.Genders))}
	for _, g := range normalize.Genders {
		s.Genders[g] = 0
	}
	for _, a := range t.df.Col(t.cols.Age).Records() {
		if !normalize.ParseAge(a).IsUnknown() {
			s.KnownAges++
		}
	}
	for _, g := range t.df.Col(t.cols.Gender).Records() {
		s.Genders[normalize.ParseGender(g)]++
	}
	return s, nil
}
