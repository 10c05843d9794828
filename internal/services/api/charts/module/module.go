// Package module wires charts into the API using modkit
package module

import (
	"customerlens/internal/adapters/plot"
	modkit "customerlens/internal/modkit"
	"customerlens/internal/modkit/httpkit"
	"customerlens/internal/modkit/swaggerkit"
	str "customerlens/internal/platform/strings"
	chartshttp "customerlens/internal/services/api/charts/http"
	chartssvc "customerlens/internal/services/api/charts/service"
	dsdomain "customerlens/internal/services/datasets/domain"
)

// Module implements the charts module
type Module struct {
	b   modkit.Built
	svc chartssvc.Service
}

// New constructs the charts module
// the datasets TablesPort must be injected with modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("charts"), modkit.WithPrefix("/charts")}, opts...)...)

	tables, ok := b.Ports.(dsdomain.TablesPort)
	if !ok {
		panic("charts module requires a datasets TablesPort via modkit.WithPorts")
	}
	svc := chartssvc.New(tables, plot.New(deps.Cfg))
	b.Ports = svc

	external := b.Register
	b.Register = func(r httpkit.Router) {
		chartshttp.Register(r, svc)
		external(r)
	}
	if b.SwaggerOn {
		swaggerkit.Register(chartsSpec)
	}
	return &Module{b: b, svc: svc}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) { m.b.Mount(r) }

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports returns the charts service
func (m *Module) Ports() any { return m.b.Ports }

func chartsSpec(spec map[string]any) {
	cfg := map[string]any{
		"type":     "object",
		"required": []any{"type"},
		"properties": map[string]any{
			"type":  map[string]any{"type": "string", "enum": []any{"bar", "line", "pie", "scatter", "histogram", "map", "table"}},
			"title": map[string]any{"type": "string"},
			"key":   map[string]any{"type": "string"},
			"value": map[string]any{"type": "string"},
			"agg":   map[string]any{"type": "string", "enum": []any{"count", "sum", "mean", "min", "max", "distinct"}},
			"filter": map[string]any{"type": "object", "properties": map[string]any{
				"field": map[string]any{"type": "string"},
				"op":    map[string]any{"type": "string", "enum": []any{"eq", "regex"}},
				"value": map[string]any{"type": "string"},
			}},
			"sort":  map[string]any{"type": "string", "enum": []any{"key", "value", "none"}},
			"limit": map[string]any{"type": "integer", "maximum": 1000},
			"bins":  map[string]any{"type": "integer", "maximum": 1000},
		},
	}
	swaggerkit.AddSchema(spec, "ChartConfig", cfg)

	body := func(extra map[string]any) map[string]any {
		props := map[string]any{
			"dataset_id": map[string]any{"type": "string", "format": "uuid"},
			"chart":      map[string]any{"$ref": "#/components/schemas/ChartConfig"},
		}
		for k, v := range extra {
			props[k] = v
		}
		return map[string]any{
			"required": true,
			"content": map[string]any{"application/json": map[string]any{"schema": map[string]any{
				"type": "object", "required": []any{"dataset_id", "chart"}, "properties": props,
			}}},
		}
	}

	swaggerkit.AddPath(spec, "/charts/render", "post", map[string]any{
		"tags":        []any{"Charts"},
		"summary":     "Chart data over a stored dataset",
		"requestBody": body(nil),
		"responses":   map[string]any{"200": map[string]any{"description": "chart data"}},
	})
	swaggerkit.AddPath(spec, "/charts/plot", "post", map[string]any{
		"tags":        []any{"Charts"},
		"summary":     "Chart image over a stored dataset",
		"requestBody": body(map[string]any{"format": map[string]any{"type": "string", "enum": []any{"png", "svg"}}}),
		"responses": map[string]any{"200": map[string]any{
			"description": "image",
			"content": map[string]any{
				"image/png":     map[string]any{"schema": map[string]any{"type": "string", "format": "binary"}},
				"image/svg+xml": map[string]any{"schema": map[string]any{"type": "string", "format": "binary"}},
			},
		}},
	})
}
