// Package swaggerkit serves the OpenAPI document and swagger UI
package swaggerkit

import (
	"net/http"

	phttp "customerlens/internal/platform/net/http"
)

// DocsPrefix is where the UI lives
const DocsPrefix = "/api/docs"

// Mount the swagger UI and JSON document when enabled
func Mount(r phttp.Router, serverURL string, enabled bool) {
	if !enabled {
		return
	}
	r.Get(DocsPrefix, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, DocsPrefix+"/", http.StatusPermanentRedirect)
	})
	r.Get(DocsPrefix+"/doc.json", serveDocJSON(serverURL))
	phttp.MountSwagger(r, DocsPrefix, DocsPrefix+"/doc.json", true)
}
