// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"customerlens/internal/adapters/plot"
	"customerlens/internal/core/chart"
	"customerlens/internal/core/normalize"
	"customerlens/internal/core/version"
	"customerlens/internal/modkit/httpkit"
	"customerlens/internal/platform/store"
)

// Deps are the handler dependencies, a nil backend is reported as skipped
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	PG          any
	CH          any

	// Now is a clock seam, nil means time.Now
	Now func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/capabilities", h.capabilities)
}

//
// Response DTOs
//

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"customerlens-api"`
	Started string `json:"started"  example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"      example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail skipped unknown
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"customerlens-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// CapabilitiesResponse lists what the chart endpoints accept
type CapabilitiesResponse struct {
	ChartTypes   []chart.Type       `json:"chart_types"  example:"bar,pie"`
	Aggregations []chart.Agg        `json:"aggregations" example:"count,mean"`
	FilterOps    []chart.Op         `json:"filter_ops"   example:"eq,regex"`
	Sorts        []chart.SortBy     `json:"sorts"        example:"key,value"`
	PlotFormats  []plot.Format      `json:"plot_formats" example:"png,svg"`
	Genders      []normalize.Gender `json:"genders"      example:"male,female,unknown"`
	MaxLimit     int                `json:"max_limit"    example:"1000"`
	DefaultBins  int                `json:"default_bins" example:"10"`
	// Datasets is false when postgres is not configured
	Datasets bool `json:"datasets" example:"true"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.deps.Now().UTC().Format(time.RFC3339),
	}, nil
}

// ready pings each configured backend, clickhouse is optional
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if p, ok := c.(store.Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
			}
			return ReadyCheck{Name: name, Status: "ok"}
		}
		return ReadyCheck{Name: name, Status: "unknown"}
	}

	pg := check("pg", h.deps.PG)
	ch := check("ch", h.deps.CH)

	// clickhouse is optional, skipped does not degrade
	overall := "ok"
	switch {
	case pg.Status == "fail" || ch.Status == "fail":
		overall = "fail"
	case pg.Status != "ok" || ch.Status == "unknown":
		overall = "degraded"
	}

	return ReadyResponse{
		Status: overall,
		Checks: []ReadyCheck{pg, ch},
		Now:    h.deps.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := h.deps.Now().Sub(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}

// capabilities lists the chart kinds, aggregations and image formats the chart endpoints accept
func (h *handlers) capabilities(_ *http.Request) (any, error) {
	return CapabilitiesResponse{
		ChartTypes:   chart.Types,
		Aggregations: chart.Aggs,
		FilterOps:    chart.Ops,
		Sorts:        chart.Sorts,
		PlotFormats:  plot.Formats,
		Genders:      normalize.Genders,
		MaxLimit:     chart.MaxLimit,
		DefaultBins:  chart.DefaultBins,
		Datasets:     h.deps.PG != nil,
	}, nil
}
