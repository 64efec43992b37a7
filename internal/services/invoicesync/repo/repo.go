// Package repo provides the Postgres-backed registered-invoice set
package repo

import (
	"context"
	"time"

	perr "tradein/internal/platform/errors"

	"tradein/internal/modkit/repokit"
)

// Repo remembers which invoice numbers were already pushed to the storefront.
// Keyed by order plus invoice so a re-issued invoice number syncs again
type Repo interface {
	IsRegistered(ctx context.Context, orderNo, invoiceNo string) (bool, error)
	MarkRegistered(ctx context.Context, orderNo, invoiceNo, shippingNo string, at time.Time) error
}

type (
	// PG is the Postgres implementation of the invoice repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) IsRegistered(ctx context.Context, orderNo, invoiceNo string) (bool, error) {
	const sql = `
		SELECT EXISTS (
			SELECT 1 FROM registered_invoices
			WHERE order_no = $1 AND invoice_no = $2
		)
	`
	var exists bool
	if err := r.q.QueryRow(ctx, sql, orderNo, invoiceNo).Scan(&exists); err != nil {
		return false, perr.FromPg(err, "registered check failed")
	}
	return exists, nil
}

func (r *queries) MarkRegistered(ctx context.Context, orderNo, invoiceNo, shippingNo string, at time.Time) error {
	const sql = `
		INSERT INTO registered_invoices (order_no, invoice_no, shipping_no, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_no, invoice_no) DO NOTHING
	`
	_, err := r.q.Exec(ctx, sql, orderNo, invoiceNo, shippingNo, at)
	return perr.FromPg(err, "mark registered failed")
}
