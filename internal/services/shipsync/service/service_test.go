package service

import (
	"context"
	"testing"
	"time"

	"tradein/internal/platform/clock"
	perr "tradein/internal/platform/errors"
	dom "tradein/internal/services/shipsync/domain"
)

type fakeOrders struct {
	calls  int
	orders []dom.Order
	err    error
}

func (f *fakeOrders) ListPaidOrders(context.Context, time.Time) ([]dom.Order, error) {
	f.calls++
	return f.orders, f.err
}

type fakeMapper struct {
	calls int
	m     map[string]string
	err   error
}

func (f *fakeMapper) LoadSkuMapping(context.Context) (map[string]string, error) {
	f.calls++
	return f.m, f.err
}

type fakeSubmitter struct {
	calls int
	errs  []error // popped per call; nil past the end
}

func (f *fakeSubmitter) SubmitShipment(_ context.Context, sub dom.Submission) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "SHIP-" + sub.OrderNo, nil
}

type fakeProcessed struct {
	done     map[string]string
	checkErr error
}

func (f *fakeProcessed) IsProcessed(_ context.Context, orderNo string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	_, ok := f.done[orderNo]
	return ok, nil
}

func (f *fakeProcessed) MarkProcessed(_ context.Context, orderNo, outcome, _ string, _ time.Time) error {
	if f.done == nil {
		f.done = map[string]string{}
	}
	f.done[orderNo] = outcome
	return nil
}

func order(no string, skus ...string) dom.Order {
	items := make([]dom.OrderLine, 0, len(skus))
	for _, s := range skus {
		items = append(items, dom.OrderLine{SKU: s, Qty: 1})
	}
	return dom.Order{
		OrderNo: no,
		Receiver: dom.Receiver{
			Name: "김철수", Phone: "010-1234-5678",
			Zip: "12345", Address: "서울시 강남구",
		},
		Items: items,
	}
}

var (
	monday    = time.Date(2024, 1, 15, 13, 30, 0, 0, time.UTC)
	runFinish = time.Date(2024, 1, 15, 13, 31, 0, 0, time.UTC)
)

func newSyncSvc(orders *fakeOrders, mapper *fakeMapper, sub *fakeSubmitter, repo *fakeProcessed, gate clock.Gate) *Svc {
	return &Svc{
		repo:      repo,
		orders:    orders,
		mapper:    mapper,
		submitter: sub,
		gate:      gate,
		cfg:       Config{OrderWindow: 24 * time.Hour, RetryWait: time.Millisecond},
		clk:       clock.Func(func() time.Time { return runFinish }),
		sleep:     func(time.Duration) {},
	}
}

func openGate() clock.Gate {
	return clock.Gate{Loc: time.UTC, From: 0, Till: 24 * 60}
}

func TestRunIfScheduled_GateOffTouchesNothing(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{}
	mapper := &fakeMapper{}
	sub := &fakeSubmitter{}
	svc := newSyncSvc(orders, mapper, sub, &fakeProcessed{}, clock.NewGate(13*60, 14*60))

	// 2024-01-20 is a Saturday everywhere in KST
	saturday := time.Date(2024, 1, 20, 13, 30, 0, 0, time.UTC)
	res, err := svc.RunIfScheduled(context.Background(), saturday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if !res.Skipped || res.GateReason == "" {
		t.Fatalf("res = %+v, want skipped with reason", res)
	}
	if orders.calls != 0 || mapper.calls != 0 || sub.calls != 0 {
		t.Fatalf("collaborators called on gated run: orders=%d mapper=%d submit=%d",
			orders.calls, mapper.calls, sub.calls)
	}
}

func TestRunIfScheduled_UnmappedSkuExcludesOrderOnly(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{orders: []dom.Order{
		order("A-1", "SKU-1"),
		order("A-2", "SKU-MISSING"),
		order("A-3", "SKU-2"),
	}}
	mapper := &fakeMapper{m: map[string]string{"SKU-1": "ITEM-1", "SKU-2": "ITEM-2"}}
	sub := &fakeSubmitter{}
	repo := &fakeProcessed{}
	svc := newSyncSvc(orders, mapper, sub, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.Submitted != 2 || res.FailedMapping != 1 || res.FailedSubmission != 0 {
		t.Fatalf("res = %+v, want submitted 2, failed-mapping 1", res)
	}
	if _, marked := repo.done["A-2"]; marked {
		t.Fatalf("unmapped order marked processed; it must retry after the mapping is fixed")
	}
}

func TestRunIfScheduled_DuplicateOrdersSkipped(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{orders: []dom.Order{order("A-1", "SKU-1"), order("A-2", "SKU-1")}}
	mapper := &fakeMapper{m: map[string]string{"SKU-1": "ITEM-1"}}
	sub := &fakeSubmitter{}
	repo := &fakeProcessed{done: map[string]string{"A-1": "submitted"}}
	svc := newSyncSvc(orders, mapper, sub, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.SkippedDuplicate != 1 || res.Submitted != 1 {
		t.Fatalf("res = %+v", res)
	}
	if sub.calls != 1 {
		t.Fatalf("submit calls = %d, want 1", sub.calls)
	}
}

func TestRunIfScheduled_TransientSubmitRetriesOnce(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{orders: []dom.Order{order("A-1", "SKU-1")}}
	mapper := &fakeMapper{m: map[string]string{"SKU-1": "ITEM-1"}}
	sub := &fakeSubmitter{errs: []error{perr.Transientf("gateway hiccup")}}
	repo := &fakeProcessed{}
	svc := newSyncSvc(orders, mapper, sub, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.Submitted != 1 || sub.calls != 2 {
		t.Fatalf("res = %+v calls = %d, want submitted after retry", res, sub.calls)
	}
	if repo.done["A-1"] != string(dom.OutcomeSubmitted) {
		t.Fatalf("outcome = %q", repo.done["A-1"])
	}
}

func TestRunIfScheduled_FailedSubmissionMarkedProcessed(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{orders: []dom.Order{order("A-1", "SKU-1")}}
	mapper := &fakeMapper{m: map[string]string{"SKU-1": "ITEM-1"}}
	sub := &fakeSubmitter{errs: []error{perr.Dispatchf("rejected"), nil}}
	repo := &fakeProcessed{}
	svc := newSyncSvc(orders, mapper, sub, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.FailedSubmission != 1 || sub.calls != 1 {
		t.Fatalf("res = %+v calls = %d, terminal rejection must not retry", res, sub.calls)
	}
	if repo.done["A-1"] != string(dom.OutcomeFailedSubmission) {
		t.Fatalf("outcome = %q, failed order must still be marked", repo.done["A-1"])
	}
}

func TestRunIfScheduled_ProcessedCheckErrorDefersOrder(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{orders: []dom.Order{order("A-1", "SKU-1")}}
	mapper := &fakeMapper{m: map[string]string{"SKU-1": "ITEM-1"}}
	sub := &fakeSubmitter{}
	repo := &fakeProcessed{checkErr: perr.DBf("pool exhausted")}
	svc := newSyncSvc(orders, mapper, sub, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.FailedCheck != 1 || res.FailedSubmission != 0 {
		t.Fatalf("res = %+v, a store read error is not a partner rejection", res)
	}
	if sub.calls != 0 || len(repo.done) != 0 {
		t.Fatalf("order touched despite failed duplicate check: calls=%d done=%v", sub.calls, repo.done)
	}
}

func TestRunIfScheduled_TimestampsComeFromClock(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{orders: []dom.Order{order("A-1", "SKU-1")}}
	mapper := &fakeMapper{m: map[string]string{"SKU-1": "ITEM-1"}}
	svc := newSyncSvc(orders, mapper, &fakeSubmitter{}, &fakeProcessed{}, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if !res.StartedAt.Equal(monday) {
		t.Fatalf("StartedAt = %v, want the scheduling instant", res.StartedAt)
	}
	if !res.FinishedAt.Equal(runFinish) {
		t.Fatalf("FinishedAt = %v, want the injected clock time", res.FinishedAt)
	}
}

func TestRunIfScheduled_FetchFailureAbortsRun(t *testing.T) {
	t.Parallel()

	orders := &fakeOrders{err: perr.Transientf("listing down")}
	sub := &fakeSubmitter{}
	repo := &fakeProcessed{}
	svc := newSyncSvc(orders, &fakeMapper{}, sub, repo, openGate())

	_, err := svc.RunIfScheduled(context.Background(), monday)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !perr.IsCode(err, perr.ErrorCodeTransient) {
		t.Fatalf("code = %v, want transient", perr.CodeOf(err))
	}
	if sub.calls != 0 || len(repo.done) != 0 {
		t.Fatalf("side effects after aborted fetch")
	}
}

func TestTransform_MapsAllLines(t *testing.T) {
	t.Parallel()

	sub, err := Transform(order("A-9", "SKU-1", "SKU-2"),
		map[string]string{"SKU-1": "ITEM-1", "SKU-2": "ITEM-2"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if len(sub.Items) != 2 || sub.Items[0].ItemCode != "ITEM-1" {
		t.Fatalf("sub = %+v", sub)
	}
	if sub.OrderNo != "A-9" || sub.Receiver != "김철수" {
		t.Fatalf("sub = %+v", sub)
	}
}

func TestTransform_NamesMissingSkus(t *testing.T) {
	t.Parallel()

	_, err := Transform(order("A-9", "SKU-X"), map[string]string{})
	if err == nil {
		t.Fatalf("expected error")
	}
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation || e.Field() != "sku" {
		t.Fatalf("err = %v", err)
	}
}
