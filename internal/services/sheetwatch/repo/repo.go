// Package repo provides the Postgres-backed snapshot store for the watch engine
package repo

import (
	"context"
	"time"

	perr "tradein/internal/platform/errors"

	"tradein/internal/modkit/repokit"
	dom "tradein/internal/services/sheetwatch/domain"
)

// Repo is the watch engine persistence surface
type Repo interface {
	// Load returns the full snapshot; an empty table yields an empty snapshot
	Load(ctx context.Context) (dom.Snapshot, error)

	// Advance records that a cell's change was acted on. Called after the
	// dispatch attempt regardless of its outcome; upsert keyed by cell
	Advance(ctx context.Context, key dom.CellKey, value string, at time.Time) error
}

type (
	// PG is the Postgres implementation of the watch repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Load(ctx context.Context) (dom.Snapshot, error) {
	const sql = `
		SELECT row_key, column_kind, last_seen, dispatched_at
		FROM watch_snapshot
	`
	rows, err := r.q.Query(ctx, sql)
	if err != nil {
		return nil, perr.FromPg(err, "load snapshot failed")
	}
	defer rows.Close()

	snap := dom.Snapshot{}
	for rows.Next() {
		var (
			rowKey       int
			columnKind   string
			lastSeen     string
			dispatchedAt time.Time
		)
		if err := rows.Scan(&rowKey, &columnKind, &lastSeen, &dispatchedAt); err != nil {
			return nil, perr.FromPg(err, "scan snapshot row failed")
		}
		snap[dom.CellKey{Row: rowKey, Column: dom.ColumnKind(columnKind)}] = dom.CellState{
			LastSeen:     lastSeen,
			DispatchedAt: dispatchedAt,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPg(err, "iterate snapshot failed")
	}
	return snap, nil
}

func (r *queries) Advance(ctx context.Context, key dom.CellKey, value string, at time.Time) error {
	const sql = `
		INSERT INTO watch_snapshot (row_key, column_kind, last_seen, dispatched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (row_key, column_kind) DO UPDATE
		SET last_seen     = EXCLUDED.last_seen,
		    dispatched_at = EXCLUDED.dispatched_at
	`
	_, err := r.q.Exec(ctx, sql, key.Row, string(key.Column), value, at)
	return perr.FromPg(err, "advance snapshot failed")
}
