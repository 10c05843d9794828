package http

import (
	httpSwagger "github.com/swaggo/http-swagger"
)

// MountSwagger serves the swagger UI under prefix when enabled
// docURL points the UI at the generated spec
func MountSwagger(r Router, prefix, docURL string, enabled bool) {
	if !enabled {
		return
	}
	r.Get(prefix+"/*", httpSwagger.Handler(httpSwagger.URL(docURL)))
}
