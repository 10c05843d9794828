package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"customerlens/internal/modkit/module"
	"customerlens/internal/modkit/swaggerkit"
	phttp "customerlens/internal/platform/net/http"
	"customerlens/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMount_WithoutStores(t *testing.T) {
	testkit.Serial(t)
	module.Reset()
	swaggerkit.Reset()
	t.Cleanup(func() { module.Reset(); swaggerkit.Reset() })

	mux := chi.NewRouter()
	mods := Mount(phttp.AdaptChi(mux), Options{EnableSwagger: true})
	require.Len(t, mods, 3)
	assert.Equal(t, []string{"charts", "datasets"}, module.Names())

	tests := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/meta/health", http.StatusOK},
		{http.MethodGet, "/api/v1/meta/ready", http.StatusOK},
		{http.MethodGet, "/api/v1/datasets", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/docs/doc.json", http.StatusOK},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound},
	}
	for _, tc := range tests {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, rr.Code, "%s %s: %s", tc.method, tc.path, rr.Body.String())
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	paths := doc["paths"].(map[string]any)
	assert.Contains(t, paths, "/charts/render")
	assert.Contains(t, paths, "/datasets/{id}")
	assert.Contains(t, paths, "/meta/capabilities")
}

type migrator struct {
	calls *[]string
	name  string
	err   error
}

func (m migrator) Migrate(context.Context) error {
	*m.calls = append(*m.calls, m.name)
	return m.err
}

type stubModule struct {
	name  string
	ports any
}

func (s stubModule) MountRoutes(phttp.Router) {}
func (s stubModule) Ports() any               { return s.ports }
func (s stubModule) Name() string             { return s.name }

func TestMigrate(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	mods := []module.Module{
		stubModule{name: "meta"},
		stubModule{name: "a", ports: struct{ M Migrator }{migrator{calls: &calls, name: "a"}}},
		stubModule{name: "plain", ports: struct{ N int }{1}},
		stubModule{name: "b", ports: migrator{calls: &calls, name: "b", err: boom}},
		stubModule{name: "c", ports: migrator{calls: &calls, name: "c"}},
	}

	err := Migrate(context.Background(), mods)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestMigrate_WithoutStoresIsNoop(t *testing.T) {
	testkit.Serial(t)
	module.Reset()
	swaggerkit.Reset()
	t.Cleanup(func() { module.Reset(); swaggerkit.Reset() })

	mods := Mount(phttp.AdaptChi(chi.NewRouter()), Options{})
	assert.NoError(t, Migrate(context.Background(), mods))
}
