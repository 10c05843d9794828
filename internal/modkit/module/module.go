// Package module defines the minimal module contract plus a port registry
package module

import (
	phttp "customerlens/internal/platform/net/http"
)

// Module is the sibling of modkit.Module without the build helpers
// a module that exports its own ports type imports this to avoid a cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
