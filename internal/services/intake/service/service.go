// Package service implements chat message intake: dedupe, parse, append
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"tradein/internal/modkit"
	"tradein/internal/modkit/repokit"
	"tradein/internal/platform/logger"
	dom "tradein/internal/services/intake/domain"
	irepo "tradein/internal/services/intake/repo"
)

// Service implements the intake port
type Service interface {
	dom.IntakePort
}

// Svc handles inbound chat messages
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[irepo.Repo]
	repo   irepo.Repo

	appender dom.SheetAppender
	deps     modkit.Deps
}

// New constructs the service
func New(deps modkit.Deps, appender dom.SheetAppender) *Svc {
	b := irepo.NewPG()
	return &Svc{
		db:       deps.PG,
		binder:   b,
		repo:     b.Bind(deps.PG),
		appender: appender,
		deps:     deps,
	}
}

// HandleMessage ingests one chat message.
//
// Chat platforms redeliver webhooks, so the event id gates processing; when
// the platform omits an id a content hash stands in. Each non-header line
// parses independently: a bad line is rejected with its field named while
// good lines still append. Rows only hit the sheet after the whole line
// validated
func (s *Svc) HandleMessage(ctx context.Context, eventID, text string) ([]dom.LineResult, bool, error) {
	log := logger.C(ctx)

	if eventID == "" {
		eventID = contentHash(text)
	}
	inserted, err := s.repo.MarkSeen(ctx, eventID)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		log.Info().Str("event_id", eventID).Msg("duplicate event delivery ignored")
		return nil, true, nil
	}

	lines := ParseMessage(text)
	results := make([]dom.LineResult, 0, len(lines))
	for _, pl := range lines {
		if pl.Err != nil {
			log.Warn().Err(pl.Err).Int("line", pl.Line).Msg("request line rejected")
			results = append(results, dom.LineResult{Line: pl.Line, Err: pl.Err.Error()})
			continue
		}
		if err := s.appender.AppendTradeIn(ctx, pl.Request); err != nil {
			log.Error().Err(err).Int("line", pl.Line).Msg("sheet append failed")
			results = append(results, dom.LineResult{Line: pl.Line, Err: err.Error()})
			continue
		}
		log.Info().
			Int("line", pl.Line).
			Int("boxes", pl.Request.Boxes).
			Msg("trade-in request ingested")
		results = append(results, dom.LineResult{Line: pl.Line, OK: true})
	}
	return results, false, nil
}

// contentHash is the dedupe fallback when the platform sends no event id
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "sha256:" + hex.EncodeToString(sum[:16])
}
