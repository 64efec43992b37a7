// Package service implements the invoice sync pipeline: courier invoice
// numbers assigned at the logistics partner are registered back onto the
// storefront's orders, moving them into delivery
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
	dom "tradein/internal/services/invoicesync/domain"
	irepo "tradein/internal/services/invoicesync/repo"
)

// Service implements the schedule and worker ports
type Service interface {
	dom.SchedulePort
	dom.WorkerPort
}

// Config controls the sync
type Config struct {
	// RetryWait is the pause before the single transient register retry
	RetryWait time.Duration

	// TickInterval is the scheduler loop cadence
	TickInterval time.Duration
}

// Svc runs gate, list, resolve, register, record
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[irepo.Repo]
	repo   irepo.Repo

	source dom.ShipmentSource
	target dom.InvoiceTarget
	gate   clock.Gate
	audit  store.Clickhouse

	cfg   Config
	deps  modkit.Deps
	clk   clock.Clock
	sleep func(time.Duration)
}

// New constructs the service
func New(deps modkit.Deps, cfg Config, gate clock.Gate, source dom.ShipmentSource, target dom.InvoiceTarget) *Svc {
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 2 * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 30 * time.Minute
	}
	b := irepo.NewPG()
	return &Svc{
		db:     deps.PG,
		binder: b,
		repo:   b.Bind(deps.PG),
		source: source,
		target: target,
		gate:   gate,
		audit:  deps.CH,
		cfg:    cfg,
		deps:   deps,
		clk:    clock.System,
		sleep:  time.Sleep,
	}
}

// RunIfScheduled executes one sync run when the gate allows.
//
// Gate refusal returns a Skipped result without touching any collaborator.
// A failed shipment listing aborts the run with nothing marked. Per-order
// failures never stop the run, and unlike the outbound submit pipeline
// nothing is marked on failure: the storefront push is idempotent, so a
// failed registration simply retries on the next cycle
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

	shipped, err := s.source.ListShippedWithInvoices(ctx)
	if err != nil {
		return res, perr.WrapIf(err, perr.ErrorCodeTransient, "shipment listing failed, run aborted")
	}
	res.Candidates = len(shipped)

	for _, so := range shipped {
		s.processShipment(ctx, so, &res)
	}

	res.FinishedAt = s.clk.Now()
	s.recordAudit(ctx, res)
	log.Info().
		Int("candidates", res.Candidates).
		Int("registered", res.Registered).
		Int("skipped_duplicate", res.SkippedDuplicate).
		Int("missing_shipping_no", res.MissingShippingNo).
		Int("failed", res.Failed).
		Int("failed_check", res.FailedCheck).
		Msg("invoice sync run done")
	return res, nil
}

func (s *Svc) processShipment(ctx context.Context, so dom.ShippedOrder, res *dom.RunResult) {
	log := logger.C(ctx)

	done, err := s.repo.IsRegistered(ctx, so.OrderNo, so.InvoiceNo)
	if err != nil {
		log.Error().Err(err).Str("order_no", so.OrderNo).Msg("registered check failed, order deferred")
		res.FailedCheck++
		return
	}
	if done {
		res.SkippedDuplicate++
		return
	}

	shippingNo, err := s.target.LookupShippingNo(ctx, so.OrderNo)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			log.Warn().Str("order_no", so.OrderNo).Msg("storefront order not found, invoice deferred")
			res.MissingShippingNo++
			return
		}
		log.Error().Err(err).Str("order_no", so.OrderNo).Msg("shipping number lookup failed")
		res.Failed++
		return
	}
	if shippingNo == "" {
		// the storefront has not issued a delivery handle yet; next run
		// picks the order up once it exists
		log.Warn().Str("order_no", so.OrderNo).Msg("no shipping number on storefront order yet")
		res.MissingShippingNo++
		return
	}

	if err := s.register(ctx, shippingNo, so.InvoiceNo); err != nil {
		res.Failed++
		log.Error().Err(err).
			Str("order_no", so.OrderNo).
			Str("invoice_no", so.InvoiceNo).
			Msg("invoice registration failed, will retry next run")
		return
	}

	if err := s.repo.MarkRegistered(ctx, so.OrderNo, so.InvoiceNo, shippingNo, s.clk.Now()); err != nil {
		log.Error().Err(err).Str("order_no", so.OrderNo).Msg("mark registered failed")
	}
	res.Registered++
	log.Info().
		Str("order_no", so.OrderNo).
		Str("shipping_no", shippingNo).
		Str("invoice_no", so.InvoiceNo).
		Msg("invoice registered")
}

// register tries once and retries a single time on a retry-worthy failure
func (s *Svc) register(ctx context.Context, shippingNo, invoiceNo string) error {
	err := s.target.RegisterInvoice(ctx, shippingNo, invoiceNo)
	if err == nil || !perr.Retryable(err) {
		return err
	}
	logger.C(ctx).Warn().Err(err).Str("shipping_no", shippingNo).Msg("register attempt failed, retrying once")
	s.sleep(s.cfg.RetryWait)
	return s.target.RegisterInvoice(ctx, shippingNo, invoiceNo)
}

// recordAudit appends one immutable run record; failures only log
func (s *Svc) recordAudit(ctx context.Context, res dom.RunResult) {
	if s.audit == nil {
		return
	}
	const q = `
		INSERT INTO invoicesync_runs
			(run_id, started_at, finished_at, candidates, registered, skipped_duplicate, missing_shipping_no, failed, failed_check)
	`
	err := s.audit.Insert(ctx, q, [][]any{{
		res.RunID, res.StartedAt, res.FinishedAt,
		int32(res.Candidates), int32(res.Registered), int32(res.SkippedDuplicate),
		int32(res.MissingShippingNo), int32(res.Failed), int32(res.FailedCheck),
	}})
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("run audit insert failed")
	}
}
