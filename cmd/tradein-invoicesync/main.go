package main

import (
	"context"
	"flag"

	"tradein/internal/modkit"
	"tradein/internal/platform/clock"
	"tradein/internal/platform/config"
	"tradein/internal/platform/logger"
	"tradein/internal/platform/store"

	invmod "tradein/internal/services/invoicesync/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "tradein-invoicesync",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      pgCfg.MustString("DBURL"),
			MaxConns: int32(pgCfg.MayInt("MAX_CONNS", 4)),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", true),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "tradein",
			ClientTag:  "invoicesync",
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
		fMode  = flag.String("mode", "worker", "invoicesync mode: worker | run-once")
		fForce = flag.Bool("force", false, "run-once only: skip the schedule gate")
	)
	flag.Parse()

	deps := modkit.FromStore(root, st)

	overrides := invmod.Options{}
	if *fForce {
		// open the gate for the whole day; weekends still refuse
		overrides.WindowFrom = 0
		overrides.WindowTill = 24 * 60
	}

	m := invmod.New(deps, overrides)
	ports := m.Ports()

	ctx := context.Background()

	switch *fMode {
	case "worker":
		if err := ports.Worker.Run(ctx); err != nil && err != context.Canceled {
			l.Fatal().Err(err).Msg("invoicesync worker failed")
		}

	case "run-once":
		res, err := ports.Schedule.RunIfScheduled(ctx, clock.NowKST(clock.System))
		if err != nil {
			l.Fatal().Err(err).Msg("invoicesync run failed")
		}
		if res.Skipped {
			l.Info().Str("reason", res.GateReason).Msg("invoicesync run gated off")
			return
		}
		l.Info().
			Str("run_id", res.RunID).
			Int("candidates", res.Candidates).
			Int("registered", res.Registered).
			Int("skipped_duplicate", res.SkippedDuplicate).
			Int("missing_shipping_no", res.MissingShippingNo).
			Int("failed", res.Failed).
			Msg("invoicesync run complete")

	default:
		l.Panic().Str("mode", *fMode).Msg("invoicesync unknown -mode (expected: worker | run-once)")
	}
}
