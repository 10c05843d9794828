// Package domain holds DTOs for the charts http and service contracts
package domain

import "customerlens/internal/core/chart"

// RenderInput selects a stored dataset and a chart over it
// Chart is checked by the renderer so its errors carry the chart config code
type RenderInput struct {
	DatasetID string       `json:"dataset_id" validate:"required,uuid" example:"6f1c2b1e-6a7e-4f5e-9a44-0c6d7c1e4a10"`
	Chart     chart.Config `json:"chart" validate:"-"`
}

// PlotInput is RenderInput plus an image format
type PlotInput struct {
	DatasetID string       `json:"dataset_id" validate:"required,uuid" example:"6f1c2b1e-6a7e-4f5e-9a44-0c6d7c1e4a10"`
	Chart     chart.Config `json:"chart" validate:"-"`
	Format    string       `json:"format,omitempty" validate:"omitempty,oneof=png svg" example:"png"`
}

// Image is a plotted chart
type Image struct {
	ContentType string
	Bytes       []byte
}
