package repo

import (
	"context"

	"customerlens/internal/core/normalize"
	"customerlens/internal/modkit/repokit"
	perr "customerlens/internal/platform/errors"
	"customerlens/internal/services/datasets/domain"
)

// MirrorDDL creates the ClickHouse copy of customers
const MirrorDDL = `
create table if not exists customers (
  dataset_id  UUID,
  ord         UInt32,
  age         Nullable(Int64),
  age_token   LowCardinality(String),
  salutation  LowCardinality(String),
  gender      Enum8('unknown' = 0, 'male' = 1, 'female' = 2),
  attrs       String,
  ingested_at DateTime64(3) default now64(3)
) engine = ReplacingMergeTree
order by (dataset_id, ord)
`

// Mirror receives every stored batch for analytical reads
type Mirror interface {
	Ensure(ctx context.Context) error
	Write(ctx context.Context, rows []domain.CustomerRow) error
}

// CHMirror writes customers to ClickHouse
type CHMirror struct{ ch repokit.Columnar }

// NewCHMirror returns nil when ch is nil so callers can skip the mirror
func NewCHMirror(ch repokit.Columnar) Mirror {
	if ch == nil {
		return nil
	}
	return &CHMirror{ch: ch}
}

// Ensure creates the table
func (m *CHMirror) Ensure(ctx context.Context) error {
	if err := m.ch.Exec(ctx, MirrorDDL); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "create clickhouse customers")
	}
	return nil
}

var mirrorCols = []string{"dataset_id", "ord", "age", "age_token", "salutation", "gender", "attrs"}

// Write inserts rows as one batch
func (m *CHMirror) Write(ctx context.Context, rows []domain.CustomerRow) error {
	if len(rows) == 0 {
		return nil
	}
	data := make([][]any, len(rows))
	for i, r := range rows {
		var age *int64
		if !r.Age.IsUnknown() {
			y := int64(r.Age.Years)
			age = &y
		}
		attrs, err := attrsJSON(r.Attrs)
		if err != nil {
			return err
		}
		data[i] = []any{r.DatasetID, uint32(r.Ord), age, r.Age.String(), normalize.Sanitize(r.Salutation), r.Gender.String(), attrs}
	}
	if err := m.ch.InsertBatch(ctx, "customers", mirrorCols, data); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "mirror customers")
	}
	return nil
}
