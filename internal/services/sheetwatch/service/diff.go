package service

import (
	"sort"
	"time"

	dom "tradein/internal/services/sheetwatch/domain"
)

// Diff computes the change events between the persisted snapshot and the
// freshly read sheet state. Pure function, no I/O.
//
// Only empty-to-non-empty transitions fire. A cell already occupied in the
// snapshot never re-triggers, so operator re-edits of a filled cell are
// silent. Rows present in the snapshot but missing from cur emit nothing.
// Events come out in ascending row order, tracking before arrival within
// a row
func Diff(prev dom.Snapshot, cur []dom.RowState, now time.Time) []dom.ChangeEvent {
	rows := make([]dom.RowState, len(cur))
	copy(rows, cur)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Row < rows[j].Row })

	var events []dom.ChangeEvent
	for _, r := range rows {
		for _, w := range []struct {
			col dom.ColumnKind
			val string
		}{
			{dom.ColumnTracking, r.Tracking},
			{dom.ColumnArrival, r.Arrival},
		} {
			if w.val == "" {
				continue
			}
			if prev.Occupied(dom.CellKey{Row: r.Row, Column: w.col}) {
				continue
			}
			events = append(events, dom.ChangeEvent{
				Row:    r.Row,
				Column: w.col,
				Value:  w.val,
				SeenAt: now,
			})
		}
	}
	return events
}
