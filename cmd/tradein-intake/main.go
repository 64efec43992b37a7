package main

import (
	"context"

	"tradein/internal/modkit"
	"tradein/internal/platform/config"
	"tradein/internal/platform/logger"
	phttp "tradein/internal/platform/net/http"
	"tradein/internal/platform/store"

	intakemod "tradein/internal/services/intake/module"
)

func main() {
	root := config.New()
	srvCfg := root.Prefix("INTAKE_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "tradein-intake",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      pgCfg.MustString("DBURL"),
			MaxConns: int32(pgCfg.MayInt("MAX_CONNS", 4)),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.FromStore(root, st)

	srv := phttp.NewServer(srvCfg)

	m := intakemod.New(deps)
	m.MountRoutes(srv.Router())

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
