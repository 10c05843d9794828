package module

import (
	"sync"

	"customerlens/internal/modkit/swaggerkit"
)

var swaggerOnce sync.Once

func registerSwagger() {
	swaggerOnce.Do(func() { swaggerkit.Register(datasetsSpec) })
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func okJSON(desc string, schema map[string]any) map[string]any {
	return map[string]any{
		"description": desc,
		"content":     map[string]any{"application/json": map[string]any{"schema": schema}},
	}
}

func datasetsSpec(spec map[string]any) {
	swaggerkit.AddSchema(spec, "Dataset", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":         map[string]any{"type": "string", "format": "uuid"},
			"name":       map[string]any{"type": "string"},
			"rows":       map[string]any{"type": "integer"},
			"known_ages": map[string]any{"type": "integer"},
			"genders":    map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "integer"}},
			"columns": map[string]any{"type": "object", "properties": map[string]any{
				"age":        map[string]any{"type": "string"},
				"salutation": map[string]any{"type": "string"},
				"gender":     map[string]any{"type": "string"},
			}},
			"names":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"created_at": map[string]any{"type": "string", "format": "date-time"},
		},
	})

	str := map[string]any{"type": "string"}
	swaggerkit.AddPath(spec, "/datasets", "post", map[string]any{
		"tags":    []any{"Datasets"},
		"summary": "Upload and normalize a customer CSV",
		"requestBody": map[string]any{
			"required": true,
			"content": map[string]any{"multipart/form-data": map[string]any{"schema": map[string]any{
				"type":     "object",
				"required": []any{"file"},
				"properties": map[string]any{
					"file":           map[string]any{"type": "string", "format": "binary"},
					"name":           str,
					"age_col":        str,
					"salutation_col": str,
					"gender_col":     str,
				},
			}}},
		},
		"responses": map[string]any{
			"201": okJSON("created", ref("Dataset")),
			"413": okJSON("too large", ref("ErrorResponse")),
		},
	})
	swaggerkit.AddPath(spec, "/datasets", "get", map[string]any{
		"tags":      []any{"Datasets"},
		"summary":   "List datasets, newest first",
		"responses": map[string]any{"200": okJSON("ok", map[string]any{"type": "array", "items": ref("Dataset")})},
	})
	swaggerkit.AddPath(spec, "/datasets/{id}", "get", map[string]any{
		"tags":    []any{"Datasets"},
		"summary": "Get one dataset",
		"parameters": []any{map[string]any{
			"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string", "format": "uuid"},
		}},
		"responses": map[string]any{
			"200": okJSON("ok", ref("Dataset")),
			"404": okJSON("not found", ref("ErrorResponse")),
		},
	})
}
