package service

import (
	"testing"
	"time"

	dom "tradein/internal/services/sheetwatch/domain"
)

var t0 = time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)

func row(n int, tracking, arrival string) dom.RowState {
	return dom.RowState{Row: n, Name: "고객", Phone: "010-1234-5678", Tracking: tracking, Arrival: arrival}
}

func TestDiff_EmptyToNonEmptyFiresOnce(t *testing.T) {
	t.Parallel()

	prev := dom.Snapshot{}
	cur := []dom.RowState{row(2, "123456789", "")}

	events := Diff(prev, cur, t0)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Column != dom.ColumnTracking || events[0].Value != "123456789" {
		t.Fatalf("unexpected event %+v", events[0])
	}

	// after advancing, an identical read must be silent
	prev[dom.CellKey{Row: 2, Column: dom.ColumnTracking}] = dom.CellState{LastSeen: "123456789", DispatchedAt: t0}
	if again := Diff(prev, cur, t0.Add(time.Minute)); len(again) != 0 {
		t.Fatalf("re-run events = %d, want 0", len(again))
	}
}

func TestDiff_ReEditOfOccupiedCellIsSilent(t *testing.T) {
	t.Parallel()

	prev := dom.Snapshot{
		{Row: 2, Column: dom.ColumnTracking}: {LastSeen: "111", DispatchedAt: t0},
	}
	cur := []dom.RowState{row(2, "222", "")}

	if events := Diff(prev, cur, t0); len(events) != 0 {
		t.Fatalf("re-edit produced %d events, want 0", len(events))
	}
}

func TestDiff_DeletedRowEmitsNothing(t *testing.T) {
	t.Parallel()

	prev := dom.Snapshot{
		{Row: 5, Column: dom.ColumnTracking}: {LastSeen: "111", DispatchedAt: t0},
	}
	if events := Diff(prev, nil, t0); len(events) != 0 {
		t.Fatalf("deleted row produced %d events, want 0", len(events))
	}
}

func TestDiff_AscendingRowOrder(t *testing.T) {
	t.Parallel()

	cur := []dom.RowState{
		row(9, "c", ""),
		row(2, "a", "입고"),
		row(4, "b", ""),
	}
	events := Diff(dom.Snapshot{}, cur, t0)
	if len(events) != 4 {
		t.Fatalf("events = %d, want 4", len(events))
	}
	want := []int{2, 2, 4, 9}
	for i, ev := range events {
		if ev.Row != want[i] {
			t.Fatalf("event %d row = %d, want %d", i, ev.Row, want[i])
		}
	}
	// within a row, tracking fires before arrival
	if events[0].Column != dom.ColumnTracking || events[1].Column != dom.ColumnArrival {
		t.Fatalf("row 2 column order = %s, %s", events[0].Column, events[1].Column)
	}
}

func TestDiff_BothColumnsIndependent(t *testing.T) {
	t.Parallel()

	prev := dom.Snapshot{
		{Row: 3, Column: dom.ColumnArrival}: {LastSeen: "입고", DispatchedAt: t0},
	}
	cur := []dom.RowState{row(3, "999", "입고")}

	events := Diff(prev, cur, t0)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Column != dom.ColumnTracking {
		t.Fatalf("column = %s, want tracking", events[0].Column)
	}
}
