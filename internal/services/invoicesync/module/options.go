package module

import (
	"time"

	"tradein/internal/platform/config"
)

// Options controls the invoice sync worker
type Options struct {
	RetryWait    time.Duration
	TickInterval time.Duration
	WindowFrom   int // minutes since midnight KST, inclusive
	WindowTill   int // minutes since midnight KST, exclusive
}

// FromConfig reads with INVOICESYNC_ prefix. The default window is the
// business day 09:00-18:59 KST; couriers keep assigning invoice numbers all
// day, so the sync sweeps every half hour
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("INVOICESYNC_")
	return Options{
		RetryWait:    c.MayDuration("RETRY_WAIT", 2*time.Second),
		TickInterval: c.MayDuration("TICK_INTERVAL", 30*time.Minute),
		WindowFrom:   c.MayInt("WINDOW_FROM_MIN", 9*60),
		WindowTill:   c.MayInt("WINDOW_TILL_MIN", 19*60),
	}
}
