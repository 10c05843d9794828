// Package http provides http transport for charts
package http

import (
	stdhttp "net/http"

	"customerlens/internal/modkit/httpkit"
	"customerlens/internal/services/api/charts/domain"
)

// Register mounts charts endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// chart data for interactive display
	httpkit.PostJSON[domain.RenderInput](r, "/render", h.render)

	// static image
	httpkit.PostJSON[domain.PlotInput](r, "/plot", h.plot)
}

type handlers struct{ svc domain.ServicePort }

// render answers chart data over a stored dataset
func (h *handlers) render(r *stdhttp.Request, in domain.RenderInput) (any, error) {
	return h.svc.Render(r.Context(), in)
}

// plot answers a chart image over a stored dataset, png unless svg is asked for
func (h *handlers) plot(r *stdhttp.Request, in domain.PlotInput) (any, error) {
	img, err := h.svc.Plot(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Blob(img.ContentType, img.Bytes), nil
}
