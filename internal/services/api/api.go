// Package api provides the HTTP API for the application
package api

import (
	"context"
	"time"

	"customerlens/internal/platform/config"
	"customerlens/internal/platform/logger"
	phttp "customerlens/internal/platform/net/http"
	"customerlens/internal/platform/net/middleware"
	"customerlens/internal/platform/store"

	"customerlens/internal/modkit"
	"customerlens/internal/modkit/httpkit"
	"customerlens/internal/modkit/module"
	"customerlens/internal/modkit/swaggerkit"

	chartsmod "customerlens/internal/services/api/charts/module"
	metamod "customerlens/internal/services/api/meta/module"
	dsdomain "customerlens/internal/services/datasets/domain"
	dsmod "customerlens/internal/services/datasets/module"
)

// BasePath is where versioned routes live
const BasePath = "/api/v1"

// HeartbeatPath answers 200 with no logging or auth
const HeartbeatPath = "/ping"

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// RequestTimeout bounds each request, 0 means 30s
	RequestTimeout time.Duration
	// SlowRequest logs requests over this at warn
	SlowRequest time.Duration
	CORSOrigins []string
}

// OptionsFromEnv reads CORE_API_*
func OptionsFromEnv(root config.Conf, st *store.Store) Options {
	c := root.Prefix("CORE_API_")
	return Options{
		Config:         root,
		Store:          st,
		Logger:         logger.Named("api"),
		EnableSwagger:  c.MayBool("SWAGGER", false),
		EnableProfiler: c.MayBool("PROFILER", false),
		RequestTimeout: c.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		SlowRequest:    c.MayDuration("SLOW_REQUEST", time.Second),
		CORSOrigins:    c.MayCSV("CORS_ORIGINS", []string{"*"}),
	}
}

// Mount builds every module and mounts them onto the given router
func Mount(r phttp.Router, opt Options) []module.Module {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	} else {
		deps.Log = *logger.Named("api")
	}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
		deps.CH = opt.Store.CH
	}

	// load balancer probe, answered before routing
	r.Use(middleware.Heartbeat(HeartbeatPath))

	// datasets owns the TablesPort charts reads through
	datasets := dsmod.New(deps, modkit.WithSwagger(opt.EnableSwagger))
	tables := module.MustPortsOf[dsdomain.TablesPort](datasets)
	charts := chartsmod.New(deps, modkit.WithPorts(tables), modkit.WithSwagger(opt.EnableSwagger))

	mods := []module.Module{
		metamod.New(deps, modkit.WithSwagger(opt.EnableSwagger)),
		datasets,
		charts,
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		Timeout: opt.RequestTimeout,
		Slow:    opt.SlowRequest,
		CORS:    middleware.CORSOptions{AllowedOrigins: opt.CORSOrigins},
	})

	swaggerkit.Mount(r, BasePath, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			// ports go in the registry for cross module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	deps.Log.Info().
		Strs("modules", module.Names()).
		Bool("postgres", deps.HasPG()).
		Bool("clickhouse", deps.HasCH()).
		Bool("swagger", opt.EnableSwagger).
		Msg("api mounted")
	return mods
}

// Migrator is a port that owns a schema
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Migrate applies the schema of every module exposing a Migrator port, in mount order
func Migrate(ctx context.Context, mods []module.Module) error {
	for _, m := range mods {
		mg, ok := module.PortsOf[Migrator](m)
		if !ok {
			continue
		}
		if err := mg.Migrate(ctx); err != nil {
			return err
		}
		logger.C(ctx).Info().Str("module", m.Name()).Msg("schema applied")
	}
	return nil
}
