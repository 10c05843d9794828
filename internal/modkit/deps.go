package modkit

import (
	"customerlens/internal/modkit/repokit"
	"customerlens/internal/platform/config"
	"customerlens/internal/platform/logger"
	"customerlens/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// PG and CH are nil when the backend is disabled
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// HasPG reports whether a postgres backend was wired
func (d Deps) HasPG() bool { return d.PG != nil }

// HasCH reports whether the clickhouse mirror was wired
func (d Deps) HasCH() bool { return d.CH != nil }

// Named returns the deps logger tagged with a component
func (d Deps) Named(component string) logger.Logger {
	return d.Log.With().Str("component", component).Logger()
}
