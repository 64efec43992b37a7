package domain

import "context"

// SheetAppender writes one validated request to the tracking sheet.
// Implementations append one row per box and must only be called after
// the whole request validated, so rejected input never leaves partial rows
type SheetAppender interface {
	AppendTradeIn(ctx context.Context, req TradeInRequest) error
}

// IntakePort handles one inbound chat message end to end
type IntakePort interface {
	// HandleMessage parses and ingests a message. duplicate is true when the
	// event id was already processed; results are empty in that case
	HandleMessage(ctx context.Context, eventID, text string) (results []LineResult, duplicate bool, err error)
}
