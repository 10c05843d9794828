package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"customerlens/internal/platform/config"
	phttp "customerlens/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestBuild_Defaults(t *testing.T) {
	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Ports != nil || b.SwaggerOn || len(b.Mw) != 0 {
		t.Fatalf("unexpected defaults %+v", b)
	}
	var r phttp.Router
	if b.Subrouter(r) != r {
		t.Fatalf("default Subrouter should be identity")
	}
	b.Register(r)
}

func TestBuild_CopiesMiddleware(t *testing.T) {
	tag := func(v string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("X-Mw", v)
				next.ServeHTTP(w, r)
			})
		}
	}
	mid := []func(http.Handler) http.Handler{tag("a"), tag("b")}
	b := Build(WithName("charts"), WithPrefix("/charts"), WithMiddlewares(mid...), WithPorts(42), WithSwagger(true))
	mid[0] = tag("z")

	if b.Name != "charts" || b.Prefix != "/charts" || b.Ports != 42 || !b.SwaggerOn {
		t.Fatalf("unexpected %+v", b)
	}
	if len(b.Mw) != 2 {
		t.Fatalf("Mw len = %d", len(b.Mw))
	}

	rr := httptest.NewRecorder()
	b.Mw[0](http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rr.Header().Get("X-Mw"); got != "a" {
		t.Fatalf("Mw[0] = %q, want a", got)
	}
}

func TestBuilt_Mount(t *testing.T) {
	subCalls := 0
	b := Build(
		WithPrefix("/charts"),
		WithSubrouter(func(r phttp.Router) phttp.Router { subCalls++; return r }),
		WithRegister(func(r phttp.Router) {
			r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
		}),
	)
	mux := chi.NewRouter()
	b.Mount(phttp.AdaptChi(mux))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/charts/ping", nil))
	if rr.Code != http.StatusTeapot || subCalls != 1 {
		t.Fatalf("code = %d subCalls = %d", rr.Code, subCalls)
	}
}

func TestBuilt_MountWithoutPrefix(t *testing.T) {
	b := Build(WithRegister(func(r phttp.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	}))
	mux := chi.NewRouter()
	b.Mount(phttp.AdaptChi(mux))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("code = %d", rr.Code)
	}
}

func TestDeps(t *testing.T) {
	var d Deps
	if d.HasPG() || d.HasCH() {
		t.Fatalf("zero deps should report no backends")
	}
	d.Cfg = config.New().Prefix("CORE_")
	log := d.Named("charts")
	log.Debug().Msg("zero logger is usable")
}
