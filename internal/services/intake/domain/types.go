// Package domain defines the intake types and ports
package domain

// TradeInRequest is one validated trade-in request parsed from a chat line
type TradeInRequest struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Postal      string `json:"postal" validate:"required"`
	Address     string `json:"address" validate:"required"`
	RequestDate string `json:"request_date" validate:"required"` // normalized 2006-01-02
	Boxes       int    `json:"boxes" validate:"required,min=1"`
}

// LineResult reports the outcome of one non-header line of a message
type LineResult struct {
	Line int    `json:"line"` // 1-based position within the message
	OK   bool   `json:"ok"`
	Err  string `json:"error,omitempty"`
}
