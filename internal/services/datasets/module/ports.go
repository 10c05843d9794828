package module

import "customerlens/internal/services/datasets/domain"

// Ports is the bundle other modules resolve with module.PortsOf
type Ports struct {
	Service domain.ServicePort
	Tables  domain.TablesPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.b.Ports }
