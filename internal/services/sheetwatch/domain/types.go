// Package domain defines the watch engine's core types
package domain

import "time"

// ColumnKind identifies a watched column of the tracking tab
type ColumnKind string

// watched columns
const (
	ColumnTracking ColumnKind = "tracking_number"
	ColumnArrival  ColumnKind = "warehouse_arrival"
)

// RowState is the observed state of one sheet row at read time
type RowState struct {
	Row      int // 1-based sheet row number, stable identity for a row
	Name     string
	Phone    string
	Postal   string
	Address  string
	Tracking string
	Arrival  string
}

// CellKey identifies one watched cell
type CellKey struct {
	Row    int
	Column ColumnKind
}

// CellState is the persisted memory of one watched cell
type CellState struct {
	LastSeen     string
	DispatchedAt time.Time
}

// Snapshot is the engine's memory of every watched cell.
// A cell absent from the snapshot has never been seen non-empty
type Snapshot map[CellKey]CellState

// Occupied reports whether the snapshot already holds a non-empty value for key
func (s Snapshot) Occupied(key CellKey) bool {
	return s[key].LastSeen != ""
}

// ChangeEvent is one empty-to-non-empty transition of a watched cell
type ChangeEvent struct {
	Row    int
	Column ColumnKind
	Value  string
	SeenAt time.Time
}

// NoticeKind names the operator or customer notice a change triggers
type NoticeKind string

// notices
const (
	NoticeInvoiceEntered     NoticeKind = "invoice_entered"
	NoticeArrivedAtWarehouse NoticeKind = "arrived_at_warehouse"
	NoticeTrackingIssued     NoticeKind = "tracking_issued"
)

// ActionKind is the delivery channel of a dispatch action
type ActionKind string

// channels
const (
	ActionChatNotify ActionKind = "chat"
	ActionSmsNotify  ActionKind = "sms"
)

// DispatchAction is one outbound send derived from a change event
type DispatchAction struct {
	Kind   ActionKind
	Notice NoticeKind
	Row    int
	Name   string
	Phone  string
	Value  string // the cell value that triggered the action
}

// DispatchResult reports one dispatch attempt sequence
type DispatchResult struct {
	OK       bool
	Attempts int
	Err      error
}

// RunStats summarizes one watch cycle
type RunStats struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Rows       int
	Events     int
	Dispatched int
	Failed     int
	Warnings   int
}
