package domain

import (
	"context"
	"time"
)

// OrderLister fetches paid orders since a point in time.
// Errors mean no usable listing; the run aborts rather than work from a
// partial page set
type OrderLister interface {
	ListPaidOrders(ctx context.Context, since time.Time) ([]Order, error)
}

// SkuMapper loads the store-SKU to partner-item-code mapping, fresh per run
type SkuMapper interface {
	LoadSkuMapping(ctx context.Context) (map[string]string, error)
}

// ShipmentSubmitter creates one outbound shipment and returns the partner id
type ShipmentSubmitter interface {
	SubmitShipment(ctx context.Context, sub Submission) (string, error)
}

// SchedulePort runs the pipeline when the schedule gate allows
type SchedulePort interface {
	RunIfScheduled(ctx context.Context, now time.Time) (RunResult, error)
}

// WorkerPort runs the scheduler loop until ctx is done
type WorkerPort interface {
	Run(ctx context.Context) error
}
