// Package repo provides the processed-event set backing intake dedupe
package repo

import (
	"context"

	"tradein/internal/modkit/repokit"
	perr "tradein/internal/platform/errors"
)

// Repo is the intake persistence surface
type Repo interface {
	// MarkSeen records an event id. inserted is false when the id was
	// already present, which is the duplicate-delivery signal
	MarkSeen(ctx context.Context, eventID string) (inserted bool, err error)
}

type (
	// PG is the Postgres implementation of the intake repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	const sql = `
		INSERT INTO intake_events (event_id, seen_at)
		VALUES ($1, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, sql, eventID)
	if err != nil {
		return false, perr.FromPg(err, "mark event seen failed")
	}
	return tag.RowsAffected() == 1, nil
}
