package domain

import (
	"context"
	"io"

	"customerlens/internal/core/table"

	"github.com/google/uuid"
)

// ServicePort is consumed by handlers and the CLI
type ServicePort interface {
	Ingest(ctx context.Context, in IngestInput, r io.Reader) (Dataset, error)
	Get(ctx context.Context, id uuid.UUID) (Dataset, error)
	List(ctx context.Context) ([]Dataset, error)
	TablesPort
}

// TablesPort rebuilds stored datasets as normalized tables, the charts module reads through it
type TablesPort interface {
	Table(ctx context.Context, id uuid.UUID) (*table.Table, error)
}
