package domain

import (
	"context"
	"time"
)

// ShipmentSource lists fulfilled orders that already carry an invoice number
type ShipmentSource interface {
	ListShippedWithInvoices(ctx context.Context) ([]ShippedOrder, error)
}

// InvoiceTarget is the storefront side of the sync: resolve an order's
// shipping handle, then push the invoice number against it
type InvoiceTarget interface {
	LookupShippingNo(ctx context.Context, orderNo string) (string, error)
	RegisterInvoice(ctx context.Context, shippingNo, invoiceNo string) error
}

// SchedulePort runs one gated sync cycle
type SchedulePort interface {
	RunIfScheduled(ctx context.Context, now time.Time) (RunResult, error)
}

// WorkerPort runs the scheduler loop until ctx is done
type WorkerPort interface {
	Run(ctx context.Context) error
}
