package service

import (
	"context"
	"time"

	"tradein/internal/platform/logger"
)

// Run ticks the scheduler until ctx is done. The gate turns off-hours ticks
// into no-ops; within the window the registered set makes repeated runs
// converge to zero new registrations
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("invoicesync")
	log.Info().Dur("interval", s.cfg.TickInterval).Msg("invoice sync worker started")

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunIfScheduled(ctx, s.clk.Now()); err != nil {
				log.Warn().Err(err).Msg("invoice sync run failed")
			}
		}
	}
}
