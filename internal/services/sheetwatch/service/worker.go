package service

import (
	"context"
	"time"

	"tradein/internal/platform/logger"
)

// Run polls the sheet on the configured cadence until ctx is done.
// Cycle errors are logged and the loop keeps going; a transient read
// failure simply means the next tick retries against unchanged state
func (s *Svc) Run(ctx context.Context) error {
	log := logger.Named("sheetwatch")
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	log.Info().Dur("interval", interval).Msg("watch worker started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				log.Warn().Err(err).Msg("watch cycle failed")
			}
		}
	}
}
