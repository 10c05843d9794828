// @title         customerlens API
// @version       0.1.0
// @description   Upload customer exports as datasets and chart them

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"customerlens/internal/modkit/repokit"
	"customerlens/internal/platform/config"
	"customerlens/internal/platform/logger"
	phttp "customerlens/internal/platform/net/http"
	"customerlens/internal/platform/store"

	"customerlens/internal/services/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	// postgres on by default, clickhouse opt in
	st, err := store.Open(ctx, store.FromEnv(root, "customerlens-api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(apiCfg)

	mods := api.Mount(srv.Router(), api.OptionsFromEnv(root, st))

	if apiCfg.MayBool("MIGRATE", true) {
		if err := api.Migrate(ctx, mods); err != nil {
			l.Panic().Err(err).Msg("migrate failed")
		}
	}

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
