package main

import (
	"context"
	"flag"
	"time"

	"tradein/internal/modkit"
	"tradein/internal/platform/config"
	"tradein/internal/platform/logger"
	"tradein/internal/platform/store"

	watchmod "tradein/internal/services/sheetwatch/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "tradein-monitor",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      pgCfg.MustString("DBURL"),
			MaxConns: int32(pgCfg.MayInt("MAX_CONNS", 4)),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", true),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "tradein",
			ClientTag:  "monitor",
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

	var (
		fMode     = flag.String("mode", "worker", "monitor mode: worker | run-once")
		fInterval = flag.Duration("interval", 0, "poll interval override (e.g. 30s)")
	)
	flag.Parse()

	deps := modkit.FromStore(root, st)

	m := watchmod.New(deps, watchmod.Options{Interval: *fInterval})
	ports := m.Ports()

	ctx := context.Background()

	switch *fMode {
	case "worker":
		if err := ports.Worker.Run(ctx); err != nil && err != context.Canceled {
			l.Fatal().Err(err).Msg("monitor worker failed")
		}

	case "run-once":
		start := time.Now()
		stats, err := ports.Cycle.RunOnce(ctx)
		if err != nil {
			l.Fatal().Err(err).Msg("monitor cycle failed")
		}
		l.Info().
			Str("run_id", stats.RunID).
			Int("events", stats.Events).
			Int("dispatched", stats.Dispatched).
			Int("failed", stats.Failed).
			Dur("took", time.Since(start)).
			Msg("monitor cycle complete")

	default:
		l.Panic().Str("mode", *fMode).Msg("monitor unknown -mode (expected: worker | run-once)")
	}
}
