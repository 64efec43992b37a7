// Package service implements the scheduled order-sync pipeline
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
	"tradein/internal/platform/net/http/bind"
	"tradein/internal/platform/store"
	dom "tradein/internal/services/shipsync/domain"
	srepo "tradein/internal/services/shipsync/repo"
)

// Service implements the schedule and worker ports
type Service interface {
	dom.SchedulePort
	dom.WorkerPort
}

// Config controls the pipeline
type Config struct {
	// OrderWindow is how far back the paid-order fetch reaches
	OrderWindow time.Duration

	// RetryWait is the pause before the single transient submit retry
	RetryWait time.Duration

	// TickInterval is the scheduler loop cadence; the gate keeps runs to
	// one window per day and the processed set keeps re-entry harmless
	TickInterval time.Duration
}

// Svc runs gate, fetch, map, transform, submit, record
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[srepo.Repo]
	repo   srepo.Repo

	orders    dom.OrderLister
	mapper    dom.SkuMapper
	submitter dom.ShipmentSubmitter
	gate      clock.Gate
	audit     store.Clickhouse

	cfg   Config
	deps  modkit.Deps
	clk   clock.Clock
	sleep func(time.Duration)
}

// New constructs the service
func New(deps modkit.Deps, cfg Config, gate clock.Gate,
	orders dom.OrderLister, mapper dom.SkuMapper, submitter dom.ShipmentSubmitter,
) *Svc {
	if cfg.OrderWindow <= 0 {
		cfg.OrderWindow = 24 * time.Hour
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 2 * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Minute
	}
	b := srepo.NewPG()
	return &Svc{
		db:        deps.PG,
		binder:    b,
		repo:      b.Bind(deps.PG),
		orders:    orders,
		mapper:    mapper,
		submitter: submitter,
		gate:      gate,
		audit:     deps.CH,
		cfg:       cfg,
		deps:      deps,
		clk:       clock.System,
		sleep:     time.Sleep,
	}
}

// RunIfScheduled executes one pipeline run when the gate allows.
//
// Gate refusal returns a Skipped result without touching any collaborator.
// A failed order fetch or mapping load aborts the run with nothing marked;
// per-order failures (unmapped SKU, rejected submission) are counted and the
// run continues
func (s *Svc) RunIfScheduled(ctx context.Context, now time.Time) (dom.RunResult, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)

	res := dom.RunResult{RunID: runID, StartedAt: now}

	if ok, reason := s.gate.Check(now); !ok {
		res.Skipped = true
		res.GateReason = reason
		res.FinishedAt = s.clk.Now()
		log.Debug().Str("reason", reason).Msg("run gated off")
		return res, nil
	}

	orders, err := s.orders.ListPaidOrders(ctx, now.Add(-s.cfg.OrderWindow))
	if err != nil {
		return res, perr.WrapIf(err, perr.ErrorCodeTransient, "order fetch failed, run aborted")
	}
	res.Orders = len(orders)

	skuMap, err := s.mapper.LoadSkuMapping(ctx)
	if err != nil {
		return res, perr.WrapIf(err, perr.ErrorCodeTransient, "sku mapping load failed, run aborted")
	}

	for _, order := range orders {
		s.processOrder(ctx, order, skuMap, &res)
	}

	res.FinishedAt = s.clk.Now()
	s.recordAudit(ctx, res)
	log.Info().
		Int("orders", res.Orders).
		Int("submitted", res.Submitted).
		Int("skipped_duplicate", res.SkippedDuplicate).
		Int("failed_mapping", res.FailedMapping).
		Int("failed_submission", res.FailedSubmission).
		Int("failed_check", res.FailedCheck).
		Msg("order sync run done")
	return res, nil
}

func (s *Svc) processOrder(ctx context.Context, order dom.Order, skuMap map[string]string, res *dom.RunResult) {
	log := logger.C(ctx)

	done, err := s.repo.IsProcessed(ctx, order.OrderNo)
	if err != nil {
		// a store read failure is not a partner rejection; the order stays
		// untouched and retries on the next run
		log.Error().Err(err).Str("order_no", order.OrderNo).Msg("processed check failed, order deferred")
		res.FailedCheck++
		return
	}
	if done {
		res.SkippedDuplicate++
		return
	}

	sub, err := Transform(order, skuMap)
	if err != nil {
		// mapping gaps are operator-fixable; the order stays unprocessed
		// so the next run picks it up once the mapping row exists
		log.Warn().Err(err).Str("order_no", order.OrderNo).Msg("order excluded, mapping incomplete")
		res.FailedMapping++
		return
	}
	if err := bind.Get().Validator.Struct(sub); err != nil {
		log.Warn().Err(err).Str("order_no", order.OrderNo).Msg("order excluded, submission invalid")
		res.FailedMapping++
		return
	}

	shipmentID, err := s.submit(ctx, sub)
	outcome := dom.OutcomeSubmitted
	if err != nil {
		outcome = dom.OutcomeFailedSubmission
		res.FailedSubmission++
		log.Error().Err(err).Str("order_no", order.OrderNo).Msg("submission failed, manual follow-up needed")
	} else {
		res.Submitted++
		log.Info().Str("order_no", order.OrderNo).Str("shipment_id", shipmentID).Msg("shipment submitted")
	}

	// marked after the attempt either way, at-most-once per order
	if err := s.repo.MarkProcessed(ctx, order.OrderNo, string(outcome), shipmentID, s.clk.Now()); err != nil {
		log.Error().Err(err).Str("order_no", order.OrderNo).Msg("mark processed failed")
	}
}

// submit tries once and retries a single time on a retry-worthy failure
func (s *Svc) submit(ctx context.Context, sub dom.Submission) (string, error) {
	id, err := s.submitter.SubmitShipment(ctx, sub)
	if err == nil {
		return id, nil
	}
	if !perr.Retryable(err) {
		return "", err
	}
	logger.C(ctx).Warn().Err(err).Str("order_no", sub.OrderNo).Msg("submit attempt failed, retrying once")
	s.sleep(s.cfg.RetryWait)
	return s.submitter.SubmitShipment(ctx, sub)
}

// recordAudit appends one immutable run record; failures only log
func (s *Svc) recordAudit(ctx context.Context, res dom.RunResult) {
	if s.audit == nil {
		return
	}
	const q = `
		INSERT INTO shipsync_runs
			(run_id, started_at, finished_at, orders, submitted, skipped_duplicate, failed_mapping, failed_submission, failed_check)
	`
	err := s.audit.Insert(ctx, q, [][]any{{
		res.RunID, res.StartedAt, res.FinishedAt,
		int32(res.Orders), int32(res.Submitted), int32(res.SkippedDuplicate),
		int32(res.FailedMapping), int32(res.FailedSubmission), int32(res.FailedCheck),
	}})
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("run audit insert failed")
	}
}
