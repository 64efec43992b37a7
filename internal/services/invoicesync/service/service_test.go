package service

import (
	"context"
	"testing"
	"time"

	"tradein/internal/platform/clock"
	perr "tradein/internal/platform/errors"
	dom "tradein/internal/services/invoicesync/domain"
)

type fakeSource struct {
	calls   int
	shipped []dom.ShippedOrder
	err     error
}

func (f *fakeSource) ListShippedWithInvoices(context.Context) ([]dom.ShippedOrder, error) {
	f.calls++
	return f.shipped, f.err
}

type fakeTarget struct {
	shipping    map[string]string // order no -> shipping no
	lookupErr   error
	lookupCalls int

	regCalls int
	regErrs  []error // popped per call; nil past the end
	regGot   [][2]string
}

func (f *fakeTarget) LookupShippingNo(_ context.Context, orderNo string) (string, error) {
	f.lookupCalls++
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	no, ok := f.shipping[orderNo]
	if !ok {
		return "", perr.NotFoundf("order %s not found", orderNo)
	}
	return no, nil
}

func (f *fakeTarget) RegisterInvoice(_ context.Context, shippingNo, invoiceNo string) error {
	f.regCalls++
	f.regGot = append(f.regGot, [2]string{shippingNo, invoiceNo})
	if len(f.regErrs) > 0 {
		err := f.regErrs[0]
		f.regErrs = f.regErrs[1:]
		return err
	}
	return nil
}

type fakeRegistered struct {
	done     map[string]bool // orderNo + "/" + invoiceNo
	checkErr error
}

func (f *fakeRegistered) IsRegistered(_ context.Context, orderNo, invoiceNo string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.done[orderNo+"/"+invoiceNo], nil
}

func (f *fakeRegistered) MarkRegistered(_ context.Context, orderNo, invoiceNo, _ string, _ time.Time) error {
	if f.done == nil {
		f.done = map[string]bool{}
	}
	f.done[orderNo+"/"+invoiceNo] = true
	return nil
}

func shipped(orderNo, invoiceNo string) dom.ShippedOrder {
	return dom.ShippedOrder{OrderNo: orderNo, CompanyRef: orderNo, InvoiceNo: invoiceNo, Status: "COMPLETED_SHIPMENTS"}
}

var (
	monday    = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	runFinish = time.Date(2024, 1, 15, 10, 31, 0, 0, time.UTC)
)

func newInvoiceSvc(source *fakeSource, target *fakeTarget, repo *fakeRegistered, gate clock.Gate) *Svc {
	return &Svc{
		repo:   repo,
		source: source,
		target: target,
		gate:   gate,
		cfg:    Config{RetryWait: time.Millisecond},
		clk:    clock.Func(func() time.Time { return runFinish }),
		sleep:  func(time.Duration) {},
	}
}

func openGate() clock.Gate {
	return clock.Gate{Loc: time.UTC, From: 0, Till: 24 * 60}
}

func TestRunIfScheduled_GateOffTouchesNothing(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	target := &fakeTarget{}
	svc := newInvoiceSvc(source, target, &fakeRegistered{}, clock.NewGate(9*60, 19*60))

	// 2024-01-20 is a Saturday everywhere in KST
	saturday := time.Date(2024, 1, 20, 10, 30, 0, 0, time.UTC)
	res, err := svc.RunIfScheduled(context.Background(), saturday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if !res.Skipped || res.GateReason == "" {
		t.Fatalf("res = %+v, want skipped with reason", res)
	}
	if source.calls != 0 || target.lookupCalls != 0 || target.regCalls != 0 {
		t.Fatalf("collaborators called on gated run")
	}
}

func TestRunIfScheduled_RegistersAndMarks(t *testing.T) {
	t.Parallel()

	source := &fakeSource{shipped: []dom.ShippedOrder{shipped("O-1", "INV-1")}}
	target := &fakeTarget{shipping: map[string]string{"O-1": "D-100"}}
	repo := &fakeRegistered{}
	svc := newInvoiceSvc(source, target, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.Candidates != 1 || res.Registered != 1 || res.Failed != 0 {
		t.Fatalf("res = %+v", res)
	}
	if len(target.regGot) != 1 || target.regGot[0] != [2]string{"D-100", "INV-1"} {
		t.Fatalf("registered = %+v, want shipping no with invoice", target.regGot)
	}
	if !repo.done["O-1/INV-1"] {
		t.Fatalf("registration not remembered")
	}
	if !res.FinishedAt.Equal(runFinish) {
		t.Fatalf("FinishedAt = %v, want the injected clock time", res.FinishedAt)
	}
}

func TestRunIfScheduled_AlreadyRegisteredSkipped(t *testing.T) {
	t.Parallel()

	source := &fakeSource{shipped: []dom.ShippedOrder{shipped("O-1", "INV-1"), shipped("O-2", "INV-2")}}
	target := &fakeTarget{shipping: map[string]string{"O-1": "D-100", "O-2": "D-200"}}
	repo := &fakeRegistered{done: map[string]bool{"O-1/INV-1": true}}
	svc := newInvoiceSvc(source, target, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.SkippedDuplicate != 1 || res.Registered != 1 {
		t.Fatalf("res = %+v", res)
	}
	if target.regCalls != 1 {
		t.Fatalf("register calls = %d, want 1", target.regCalls)
	}
}

func TestRunIfScheduled_ReissuedInvoiceSyncsAgain(t *testing.T) {
	t.Parallel()

	// same order, new invoice number: the dedupe key includes the invoice
	source := &fakeSource{shipped: []dom.ShippedOrder{shipped("O-1", "INV-2")}}
	target := &fakeTarget{shipping: map[string]string{"O-1": "D-100"}}
	repo := &fakeRegistered{done: map[string]bool{"O-1/INV-1": true}}
	svc := newInvoiceSvc(source, target, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.Registered != 1 || res.SkippedDuplicate != 0 {
		t.Fatalf("res = %+v, a re-issued invoice must sync", res)
	}
}

func TestRunIfScheduled_MissingShippingNoDeferred(t *testing.T) {
	t.Parallel()

	source := &fakeSource{shipped: []dom.ShippedOrder{shipped("O-1", "INV-1"), shipped("O-2", "INV-2")}}
	target := &fakeTarget{shipping: map[string]string{"O-1": "D-100", "O-2": ""}}
	repo := &fakeRegistered{}
	svc := newInvoiceSvc(source, target, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.Registered != 1 || res.MissingShippingNo != 1 {
		t.Fatalf("res = %+v", res)
	}
	if repo.done["O-2/INV-2"] {
		t.Fatalf("order without a shipping number marked; it must retry next run")
	}
}

func TestRunIfScheduled_UnknownStorefrontOrderDeferred(t *testing.T) {
	t.Parallel()

	source := &fakeSource{shipped: []dom.ShippedOrder{shipped("O-GONE", "INV-1")}}
	target := &fakeTarget{shipping: map[string]string{}}
	repo := &fakeRegistered{}
	svc := newInvoiceSvc(source, target, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.MissingShippingNo != 1 || res.Failed != 0 {
		t.Fatalf("res = %+v, an absent order is deferral, not failure", res)
	}
	if target.regCalls != 0 {
		t.Fatalf("register called for unknown order")
	}
}

func TestRunIfScheduled_TransientRegisterRetriesOnce(t *testing.T) {
	t.Parallel()

	source := &fakeSource{shipped: []dom.ShippedOrder{shipped("O-1", "INV-1")}}
	target := &fakeTarget{
		shipping: map[string]string{"O-1": "D-100"},
		regErrs:  []error{perr.Transientf("gateway hiccup")},
	}
	repo := &fakeRegistered{}
	svc := newInvoiceSvc(source, target, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.Registered != 1 || target.regCalls != 2 {
		t.Fatalf("res = %+v calls = %d, want registered after retry", res, target.regCalls)
	}
}

func TestRunIfScheduled_FailedRegistrationNotMarked(t *testing.T) {
	t.Parallel()

	source := &fakeSource{shipped: []dom.ShippedOrder{shipped("O-1", "INV-1")}}
	target := &fakeTarget{
		shipping: map[string]string{"O-1": "D-100"},
		regErrs:  []error{perr.Dispatchf("rejected"), nil},
	}
	repo := &fakeRegistered{}
	svc := newInvoiceSvc(source, target, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.Failed != 1 || target.regCalls != 1 {
		t.Fatalf("res = %+v calls = %d, terminal rejection must not retry", res, target.regCalls)
	}
	if repo.done["O-1/INV-1"] {
		t.Fatalf("failed registration marked; the idempotent push must retry next run")
	}
}

func TestRunIfScheduled_RegisteredCheckErrorDefersOrder(t *testing.T) {
	t.Parallel()

	source := &fakeSource{shipped: []dom.ShippedOrder{shipped("O-1", "INV-1")}}
	target := &fakeTarget{shipping: map[string]string{"O-1": "D-100"}}
	repo := &fakeRegistered{checkErr: perr.DBf("pool exhausted")}
	svc := newInvoiceSvc(source, target, repo, openGate())

	res, err := svc.RunIfScheduled(context.Background(), monday)
	if err != nil {
		t.Fatalf("RunIfScheduled: %v", err)
	}
	if res.FailedCheck != 1 || res.Failed != 0 {
		t.Fatalf("res = %+v, a store read error is not a storefront failure", res)
	}
	if target.regCalls != 0 {
		t.Fatalf("order touched despite failed duplicate check")
	}
}

func TestRunIfScheduled_ListingFailureAbortsRun(t *testing.T) {
	t.Parallel()

	source := &fakeSource{err: perr.Transientf("partner api down")}
	target := &fakeTarget{}
	svc := newInvoiceSvc(source, target, &fakeRegistered{}, openGate())

	_, err := svc.RunIfScheduled(context.Background(), monday)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !perr.IsCode(err, perr.ErrorCodeTransient) {
		t.Fatalf("code = %v, want transient", perr.CodeOf(err))
	}
	if target.lookupCalls != 0 || target.regCalls != 0 {
		t.Fatalf("side effects after aborted listing")
	}
}
