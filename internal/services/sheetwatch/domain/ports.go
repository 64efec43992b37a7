package domain

import "context"

// SheetReader reads the full watched-row state. Implementations must be
// fail-closed: an error means no usable state, never partial state
type SheetReader interface {
	ReadWatchedRows(ctx context.Context) ([]RowState, error)
}

// ChatNotifier posts an operator notice to the team channel
type ChatNotifier interface {
	PostMessage(ctx context.Context, channel, text string) error
}

// SmsNotifier sends a customer-facing template message
type SmsNotifier interface {
	SendTemplate(ctx context.Context, templateID, to string, vars map[string]string) error
}

// WorkerPort runs the polling loop until ctx is done
type WorkerPort interface {
	Run(ctx context.Context) error
}

// CyclePort executes one run-to-completion watch cycle
type CyclePort interface {
	RunOnce(ctx context.Context) (RunStats, error)
}
