// Package domain defines the order-sync pipeline types
package domain

import "time"

// Order is one paid storefront order as the pipeline sees it
type Order struct {
	OrderNo   string
	OrderedAt string
	Receiver  Receiver
	Items     []OrderLine
}

// Receiver is the shipping recipient
type Receiver struct {
	Name    string
	Phone   string
	Zip     string
	Address string
	Memo    string
}

// OrderLine is one order line keyed by the store's SKU
type OrderLine struct {
	SKU  string
	Name string
	Qty  int
}

// Submission is the outbound shipment in the logistics partner's schema
type Submission struct {
	OrderNo  string           `validate:"required"`
	Receiver string           `validate:"required"`
	Phone    string           `validate:"required"`
	Zip      string           `validate:"required"`
	Address  string           `validate:"required"`
	Memo     string
	Items    []SubmissionItem `validate:"required,min=1,dive"`
}

// SubmissionItem is one outbound line in the partner's item codes
type SubmissionItem struct {
	ItemCode string `validate:"required"`
	Qty      int    `validate:"required,min=1"`
}

// Outcome labels how one order left the pipeline
type Outcome string

// outcomes
const (
	OutcomeSubmitted        Outcome = "submitted"
	OutcomeFailedSubmission Outcome = "failed_submission"
)

// RunResult summarizes one scheduled run
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Skipped is true when the schedule gate refused the run; GateReason
	// says why and no collaborator was called
	Skipped    bool   `json:"skipped"`
	GateReason string `json:"gate_reason,omitempty"`

	Orders           int `json:"orders"`
	Submitted        int `json:"submitted"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	FailedMapping    int `json:"failed_mapping"`
	FailedSubmission int `json:"failed_submission"`

	// FailedCheck counts orders whose duplicate lookup errored; they were
	// neither submitted nor marked and retry on the next run
	FailedCheck int `json:"failed_check"`
}
