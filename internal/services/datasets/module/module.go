// Package module wires datasets into the API using modkit
package module

import (
	"context"
	"io"

	"customerlens/internal/core/table"
	modkit "customerlens/internal/modkit"
	"customerlens/internal/modkit/httpkit"
	perr "customerlens/internal/platform/errors"
	str "customerlens/internal/platform/strings"
	"customerlens/internal/services/datasets/domain"
	dshttp "customerlens/internal/services/datasets/http"
	dsrepo "customerlens/internal/services/datasets/repo"
	dssvc "customerlens/internal/services/datasets/service"

	"github.com/google/uuid"
)

// DefaultMaxUploadBytes caps uploads when CORE_API_MAX_UPLOAD_BYTES is unset
const DefaultMaxUploadBytes = 32 << 20

// Module implements the datasets module
type Module struct {
	b   modkit.Built
	svc domain.ServicePort
}

// New constructs the datasets module from deps
// without postgres every operation answers Unavailable
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	var svc domain.ServicePort = unavailable{}
	if deps.HasPG() {
		svc = dssvc.New(deps.PG, dsrepo.NewPG(), dsrepo.NewCHMirror(deps.CH), dssvc.ConfigFromEnv(deps.Cfg))
	}
	maxBytes := deps.Cfg.Prefix("CORE_API_").MayInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
	return NewWithService(svc, dshttp.Options{MaxUploadBytes: int64(maxBytes)}, opts...)
}

// NewWithService mounts an existing service, tests and the CLI use it
func NewWithService(svc domain.ServicePort, o dshttp.Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("datasets"),
		modkit.WithPrefix("/datasets"),
	}, opts...)...)
	b.Ports = Ports{Service: svc, Tables: svc}

	external := b.Register
	b.Register = func(r httpkit.Router) {
		dshttp.Register(r, svc, o)
		external(r)
	}
	if b.SwaggerOn {
		registerSwagger()
	}
	return &Module{b: b, svc: svc}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) { m.b.Mount(r) }

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Service returns the wired service
func (m *Module) Service() domain.ServicePort { return m.svc }

type unavailable struct{}

func errNoPG() error { return perr.Unavailablef("datasets need postgres, set SERVICE_PGSQL_DBURL") }

func (unavailable) Ingest(context.Context, domain.IngestInput, io.Reader) (domain.Dataset, error) {
	return domain.Dataset{}, errNoPG()
}
func (unavailable) Get(context.Context, uuid.UUID) (domain.Dataset, error) {
	return domain.Dataset{}, errNoPG()
}
func (unavailable) List(context.Context) ([]domain.Dataset, error) { return nil, errNoPG() }
func (unavailable) Table(context.Context, uuid.UUID) (*table.Table, error) {
	return nil, errNoPG()
}
