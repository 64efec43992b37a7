package module

import (
	"time"

	"tradein/internal/platform/config"
)

// Options controls the watch worker
type Options struct {
	Interval  time.Duration
	Channel   string
	SMSTmpl   string
	RetryWait time.Duration
}

// FromConfig reads with MONITOR_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("MONITOR_")
	return Options{
		Interval:  c.MayDuration("INTERVAL", time.Minute),
		Channel:   c.MustString("CHAT_CHANNEL"),
		SMSTmpl:   c.MustString("SMS_TEMPLATE_ID"),
		RetryWait: c.MayDuration("RETRY_WAIT", 2*time.Second),
	}
}
