// Package domain defines the invoice sync types
package domain

import "time"

// ShippedOrder is one fulfilled order whose courier invoice number is known
// at the logistics partner but possibly not yet at the storefront
type ShippedOrder struct {
	OrderNo    string // storefront order number
	CompanyRef string // partner-side reference as received
	InvoiceNo  string
	Status     string
}

// RunResult summarizes one scheduled sync run
type RunResult struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Skipped is true when the schedule gate refused the run; GateReason
	// says why and no collaborator was called
	Skipped    bool   `json:"skipped"`
	GateReason string `json:"gate_reason,omitempty"`

	Candidates       int `json:"candidates"`
	Registered       int `json:"registered"`
	SkippedDuplicate int `json:"skipped_duplicate"`

	// MissingShippingNo counts orders the storefront has no delivery handle
	// for yet; they retry on the next run
	MissingShippingNo int `json:"missing_shipping_no"`

	// Failed counts registrations that failed after the retry; they also
	// retry next run because the storefront push is idempotent
	Failed int `json:"failed"`

	// FailedCheck counts orders whose duplicate lookup errored
	FailedCheck int `json:"failed_check"`
}
