package domain

import (
	"context"

	"customerlens/internal/core/chart"
)

// ServicePort is consumed by handlers
type ServicePort interface {
	Render(ctx context.Context, in RenderInput) (chart.Data, error)
	Plot(ctx context.Context, in PlotInput) (Image, error)
}
