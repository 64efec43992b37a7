// Package service implements the spreadsheet watch engine
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tradein/internal/modkit"
	"tradein/internal/modkit/repokit"
	"tradein/internal/platform/clock"
	perr "tradein/internal/platform/errors"
	"tradein/internal/platform/logger"
	"tradein/internal/platform/store"
	dom "tradein/internal/services/sheetwatch/domain"
	wrepo "tradein/internal/services/sheetwatch/repo"
)

// Service implements the cycle and worker ports
type Service interface {
	dom.WorkerPort
	dom.CyclePort
}

// Config controls the watch engine
type Config struct {
	Interval  time.Duration // poll cadence
	Channel   string        // operator chat channel
	SMSTmpl   string        // tracking-issued template id
	RetryWait time.Duration
}

// Svc runs the read-diff-classify-dispatch-advance cycle
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[wrepo.Repo]
	repo   wrepo.Repo

	reader     dom.SheetReader
	dispatcher *Dispatcher
	audit      store.Clickhouse

	cfg  Config
	deps modkit.Deps
	clk  clock.Clock
}

// New constructs the service
func New(deps modkit.Deps, cfg Config, reader dom.SheetReader, chat dom.ChatNotifier, sms dom.SmsNotifier) *Svc {
	b := wrepo.NewPG()
	d := NewDispatcher(chat, sms, cfg.Channel, cfg.SMSTmpl)
	if cfg.RetryWait > 0 {
		d.RetryWait = cfg.RetryWait
	}
	return &Svc{
		db:         deps.PG,
		binder:     b,
		repo:       b.Bind(deps.PG),
		reader:     reader,
		dispatcher: d,
		audit:      deps.CH,
		cfg:        cfg,
		deps:       deps,
		clk:        clock.System,
	}
}

// RunOnce executes one run-to-completion watch cycle.
//
// A read failure aborts the cycle before any snapshot write so the next
// cycle sees identical prior state. After that point every change event is
// classified and dispatched, and its cell is advanced whether or not the
// dispatch succeeded
func (s *Svc) RunOnce(ctx context.Context) (dom.RunStats, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)

	stats := dom.RunStats{RunID: runID, StartedAt: s.clk.Now()}

	rows, err := s.reader.ReadWatchedRows(ctx)
	if err != nil {
		return stats, perr.WrapIf(err, perr.ErrorCodeTransient, "watch cycle aborted on read")
	}
	stats.Rows = len(rows)

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return stats, err
	}

	byRow := make(map[int]dom.RowState, len(rows))
	for _, r := range rows {
		byRow[r.Row] = r
	}

	events := Diff(snap, rows, s.clk.Now())
	stats.Events = len(events)

	for _, ev := range events {
		actions, warnings := Classify(ev, byRow[ev.Row])
		for _, w := range warnings {
			log.Warn().Str("column", string(ev.Column)).Msg(w)
		}
		stats.Warnings += len(warnings)

		for _, a := range actions {
			res := s.dispatcher.Dispatch(ctx, a)
			if res.OK {
				stats.Dispatched++
			} else {
				stats.Failed++
				log.Error().Err(res.Err).
					Int("row", a.Row).
					Int("attempts", res.Attempts).
					Str("notice", string(a.Notice)).
					Msg("dispatch failed after retry, manual follow-up needed")
			}
		}

		// advance regardless of dispatch outcome, at most one duplicate
		// send is tolerated if this write is lost
		if err := s.repo.Advance(ctx, dom.CellKey{Row: ev.Row, Column: ev.Column}, ev.Value, s.clk.Now()); err != nil {
			log.Error().Err(err).Int("row", ev.Row).Msg("snapshot advance failed")
		}
	}

	stats.FinishedAt = s.clk.Now()
	s.recordAudit(ctx, stats)
	log.Info().
		Int("rows", stats.Rows).
		Int("events", stats.Events).
		Int("dispatched", stats.Dispatched).
		Int("failed", stats.Failed).
		Msg("watch cycle done")
	return stats, nil
}

// recordAudit appends one immutable run record; failures only log
func (s *Svc) recordAudit(ctx context.Context, st dom.RunStats) {
	if s.audit == nil {
		return
	}
	const q = `
		INSERT INTO monitor_runs
			(run_id, started_at, finished_at, rows_read, events, dispatched, failed, warnings)
	`
	err := s.audit.Insert(ctx, q, [][]any{{
		st.RunID, st.StartedAt, st.FinishedAt,
		int32(st.Rows), int32(st.Events), int32(st.Dispatched), int32(st.Failed), int32(st.Warnings),
	}})
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("run audit insert failed")
	}
}
