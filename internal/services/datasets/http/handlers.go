// Package http provides http transport for datasets
package http

import (
	stdhttp "net/http"
	"strings"

	"customerlens/internal/core/table"
	"customerlens/internal/modkit/httpkit"
	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/net/http/bind"
	"customerlens/internal/services/datasets/domain"

	"github.com/google/uuid"
)

// FileField is the multipart part holding the CSV
const FileField = "file"

// Options tunes the transport
type Options struct {
	// MaxUploadBytes caps the multipart body, 0 means no cap
	MaxUploadBytes int64
}

// Register mounts datasets endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort, o Options) {
	h := &handlers{svc: s, opt: o}

	httpkit.Post(r, "/", h.create)
	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)
}

type handlers struct {
	svc domain.ServicePort
	opt Options
}

func (h *handlers) create(r *stdhttp.Request) (any, error) {
	f, err := bind.FormFile(r, FileField, h.opt.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	in := domain.IngestInput{
		Name: strings.TrimSpace(r.FormValue("name")),
		Columns: table.Columns{
			Age:        strings.TrimSpace(r.FormValue("age_col")),
			Salutation: strings.TrimSpace(r.FormValue("salutation_col")),
			Gender:     strings.TrimSpace(r.FormValue("gender_col")),
		},
	}
	if in.Name == "" {
		in.Name = strings.TrimSuffix(f.Name, ".csv")
	}
	d, err := h.svc.Ingest(r.Context(), in, f)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(d), nil
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.svc.List(r.Context())
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := ParseID(httpkit.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	return h.svc.Get(r.Context(), id)
}

// ParseID parses a dataset id, a malformed id is a Validation error on field id
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, perr.WithField(perr.Validationf("invalid dataset id %q", s), "id")
	}
	return id, nil
}
