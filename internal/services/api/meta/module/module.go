// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "customerlens/internal/modkit"
	"customerlens/internal/modkit/httpkit"
	"customerlens/internal/modkit/swaggerkit"
	str "customerlens/internal/platform/strings"

	metahttp "customerlens/internal/services/api/meta/http"
)

// ServiceName is reported by health, version and service
const ServiceName = "customerlens-api"

// Module implements the modkit.Module interface
type Module struct {
	b         modkit.Built
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{startedAt: time.Now()}

	// typed nils would read as configured backends
	hd := metahttp.Deps{ServiceName: ServiceName, StartedAt: m.startedAt}
	if deps.HasPG() {
		hd.PG = deps.PG
	}
	if deps.HasCH() {
		hd.CH = deps.CH
	}

	external := b.Register
	b.Register = func(r httpkit.Router) {
		metahttp.Register(r, hd)
		external(r)
	}
	if b.SwaggerOn {
		swaggerkit.Register(metaSpec)
	}
	m.b = b
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) { m.b.Mount(r) }

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.b.Name }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }

func metaSpec(spec map[string]any) {
	obj := func(props map[string]any) map[string]any {
		return map[string]any{"type": "object", "properties": props}
	}
	text := map[string]any{"type": "string"}
	texts := map[string]any{"type": "array", "items": text}
	integer := map[string]any{"type": "integer"}

	swaggerkit.AddSchema(spec, "HealthResponse", obj(map[string]any{
		"ok": map[string]any{"type": "boolean"}, "service": text, "started": text, "now": text,
	}))
	swaggerkit.AddSchema(spec, "ReadyResponse", obj(map[string]any{
		"status": map[string]any{"type": "string", "enum": []any{"ok", "degraded", "fail"}},
		"checks": map[string]any{"type": "array", "items": obj(map[string]any{
			"name":   text,
			"status": map[string]any{"type": "string", "enum": []any{"ok", "fail", "skipped", "unknown"}},
			"error":  text,
		})},
		"now": text,
	}))
	swaggerkit.AddSchema(spec, "BuildInfo", obj(map[string]any{
		"service": text, "version": text, "commit": text, "date": text, "go_version": text,
	}))
	swaggerkit.AddSchema(spec, "ServiceResponse", obj(map[string]any{
		"name": text, "started": text, "uptime": integer,
	}))
	swaggerkit.AddSchema(spec, "CapabilitiesResponse", obj(map[string]any{
		"chart_types": texts, "aggregations": texts, "filter_ops": texts, "sorts": texts,
		"plot_formats": texts, "genders": texts, "max_limit": integer, "default_bins": integer,
		"datasets": map[string]any{"type": "boolean"},
	}))

	get := func(path, summary, schema string) {
		swaggerkit.AddPath(spec, path, "get", map[string]any{
			"tags":    []any{"Meta"},
			"summary": summary,
			"responses": map[string]any{"200": map[string]any{
				"description": "ok",
				"content": map[string]any{"application/json": map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/" + schema},
				}},
			}},
		})
	}
	get("/meta/health", "Health check", "HealthResponse")
	get("/meta/ready", "Readiness with dependency checks", "ReadyResponse")
	get("/meta/version", "Build and version info", "BuildInfo")
	get("/meta/service", "Service info and uptime", "ServiceResponse")
	get("/meta/capabilities", "Chart kinds, aggregations and image formats", "CapabilitiesResponse")
}
