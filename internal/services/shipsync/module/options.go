package module

import (
	"time"

	"tradein/internal/platform/config"
)

// Options controls the shipsync worker
type Options struct {
	OrderWindow  time.Duration
	RetryWait    time.Duration
	TickInterval time.Duration
	WindowFrom   int // minutes since midnight KST, inclusive
	WindowTill   int // minutes since midnight KST, exclusive
}

// FromConfig reads with SHIPSYNC_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("SHIPSYNC_")
	return Options{
		OrderWindow:  c.MayDuration("ORDER_WINDOW", 24*time.Hour),
		RetryWait:    c.MayDuration("RETRY_WAIT", 2*time.Second),
		TickInterval: c.MayDuration("TICK_INTERVAL", time.Minute),
		WindowFrom:   c.MayInt("WINDOW_FROM_MIN", 13*60),
		WindowTill:   c.MayInt("WINDOW_TILL_MIN", 14*60),
	}
}
