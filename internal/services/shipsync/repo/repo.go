// Package repo provides the processed-order set backing shipsync dedupe
package repo

import (
	"context"
	"time"

	"tradein/internal/modkit/repokit"
	perr "tradein/internal/platform/errors"
)

// Repo is the shipsync persistence surface
type Repo interface {
	// IsProcessed reports whether the order was already attempted in an
	// earlier run. Processed orders are skipped with no side effects
	IsProcessed(ctx context.Context, orderNo string) (bool, error)

	// MarkProcessed records the submission attempt. Called after the
	// attempt whatever its outcome so a failed order is not retried on
	// later runs
	MarkProcessed(ctx context.Context, orderNo, outcome, shipmentID string, at time.Time) error
}

type (
	// PG is the Postgres implementation of the shipsync repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) IsProcessed(ctx context.Context, orderNo string) (bool, error) {
	const sql = `SELECT EXISTS (SELECT 1 FROM processed_orders WHERE order_no = $1)`
	var exists bool
	if err := r.q.QueryRow(ctx, sql, orderNo).Scan(&exists); err != nil {
		return false, perr.FromPg(err, "processed check failed")
	}
	return exists, nil
}

func (r *queries) MarkProcessed(ctx context.Context, orderNo, outcome, shipmentID string, at time.Time) error {
	const sql = `
		INSERT INTO processed_orders (order_no, outcome, shipment_id, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_no) DO UPDATE
		SET outcome      = EXCLUDED.outcome,
		    shipment_id  = EXCLUDED.shipment_id,
		    processed_at = EXCLUDED.processed_at
	`
	_, err := r.q.Exec(ctx, sql, orderNo, outcome, shipmentID, at)
	return perr.FromPg(err, "mark processed failed")
}
