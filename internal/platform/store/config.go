package store

import (
	"time"

	"customerlens/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries bounds the boot ping loop, 0 means 20
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse
type CHConfig struct {
	Enabled bool
	URL     string
	// ClientName and ClientTag end up in system.query_log client info
	ClientName string
	ClientTag  string
}

// FromEnv reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*
// postgres is enabled by default, clickhouse is opt in
func FromEnv(root config.Conf, appName string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")

	out := Config{AppName: appName}

	out.PG.Enabled = pg.MayBool("ENABLED", true)
	if out.PG.Enabled {
		out.PG.URL = pg.MustString("DBURL")
	}
	out.PG.MaxConns = int32(pg.MayIntIn("MAX_CONNS", 8, 1, 256))
	out.PG.LogSQL = pg.MayBool("LOG_SQL", false)
	out.PG.SlowQueryMs = pg.MayInt("SLOW_MS", 250)
	out.PG.ConnectRetries = pg.MayIntIn("CONNECT_RETRIES", 20, 1, 100)
	out.PG.PingTimeout = pg.MayDuration("PING_TIMEOUT", 3*time.Second)

	out.CH.Enabled = ch.MayBool("ENABLED", false)
	if out.CH.Enabled {
		out.CH.URL = ch.MustString("DBURL")
	}
	out.CH.ClientName = appName
	out.CH.ClientTag = ch.MayString("CLIENT_TAG", "dev")
	return out
}
