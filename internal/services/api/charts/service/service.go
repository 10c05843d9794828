// Package service renders charts over stored datasets
package service

import (
	"context"

	"customerlens/internal/adapters/plot"
	"customerlens/internal/core/chart"
	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/logger"
	"customerlens/internal/services/api/charts/domain"
	dsdomain "customerlens/internal/services/datasets/domain"

	"github.com/google/uuid"
)

// Service defines the charts service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the charts service
type Svc struct {
	tables  dsdomain.TablesPort
	plotter plot.Plotter
}

// New constructs a charts service
func New(tables dsdomain.TablesPort, p plot.Plotter) *Svc {
	if tables == nil {
		panic("charts.Service requires a datasets TablesPort")
	}
	return &Svc{tables: tables, plotter: p}
}

// Render computes chart data for the interactive client
func (s *Svc) Render(ctx context.Context, in domain.RenderInput) (chart.Data, error) {
	id, err := uuid.Parse(in.DatasetID)
	if err != nil {
		return chart.Data{}, perr.WithField(perr.Validationf("invalid dataset id %q", in.DatasetID), "dataset_id")
	}
	ctx = logger.WithDataset(ctx, id.String())
	tb, err := s.tables.Table(ctx, id)
	if err != nil {
		return chart.Data{}, err
	}
	d, err := chart.Render(tb, in.Chart)
	if err != nil {
		return chart.Data{}, chartField(err)
	}
	logger.C(ctx).Debug().
		Str("type", string(d.Type)).
		Int("points", len(d.Points)).
		Int("skipped", d.Skipped).
		Msg("chart rendered")
	return d, nil
}

// Plot renders and draws the chart as png or svg
func (s *Svc) Plot(ctx context.Context, in domain.PlotInput) (domain.Image, error) {
	f, err := plot.ParseFormat(in.Format)
	if err != nil {
		return domain.Image{}, err
	}
	d, err := s.Render(ctx, domain.RenderInput{DatasetID: in.DatasetID, Chart: in.Chart})
	if err != nil {
		return domain.Image{}, err
	}
	b, err := s.plotter.Plot(d, f)
	if err != nil {
		return domain.Image{}, err
	}
	return domain.Image{ContentType: f.ContentType(), Bytes: b}, nil
}

// chartField scopes a renderer field under the request's chart object
func chartField(err error) error {
	e, ok := perr.As(err)
	if !ok || e.Field() == "" {
		return err
	}
	return perr.WithField(err, "chart."+e.Field())
}
