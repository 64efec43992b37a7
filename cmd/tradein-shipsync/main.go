package main

import (
	"context"
	"flag"

	"tradein/internal/modkit"
	"tradein/internal/platform/clock"
	"tradein/internal/platform/config"
	"tradein/internal/platform/logger"
	"tradein/internal/platform/store"

	syncmod "tradein/internal/services/shipsync/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		AppName: "tradein-shipsync",
		PG: store.PGConfig{
			Enabled:  true,
			URL:      pgCfg.MustString("DBURL"),
			MaxConns: int32(pgCfg.MayInt("MAX_CONNS", 4)),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", true),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "tradein",
			ClientTag:  "shipsync",
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
		fMode  = flag.String("mode", "worker", "shipsync mode: worker | run-once")
		fForce = flag.Bool("force", false, "run-once only: skip the schedule gate")
	)
	flag.Parse()

	deps := modkit.FromStore(root, st)

	overrides := syncmod.Options{}
	if *fForce {
		// open the gate for the whole day; weekends still refuse
		overrides.WindowFrom = 0
		overrides.WindowTill = 24 * 60
	}

	m := syncmod.New(deps, overrides)
	ports := m.Ports()

	ctx := context.Background()

	switch *fMode {
	case "worker":
		if err := ports.Worker.Run(ctx); err != nil && err != context.Canceled {
			l.Fatal().Err(err).Msg("shipsync worker failed")
		}

	case "run-once":
		res, err := ports.Schedule.RunIfScheduled(ctx, clock.NowKST(clock.System))
		if err != nil {
			l.Fatal().Err(err).Msg("shipsync run failed")
		}
		if res.Skipped {
			l.Info().Str("reason", res.GateReason).Msg("shipsync run gated off")
			return
		}
		l.Info().
			Str("run_id", res.RunID).
			Int("submitted", res.Submitted).
			Int("skipped_duplicate", res.SkippedDuplicate).
			Int("failed_mapping", res.FailedMapping).
			Int("failed_submission", res.FailedSubmission).
			Int("failed_check", res.FailedCheck).
			Msg("shipsync run complete")

	default:
		l.Panic().Str("mode", *fMode).Msg("shipsync unknown -mode (expected: worker | run-once)")
	}
}
