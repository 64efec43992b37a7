// Package clock provides a swappable time source plus the service timezone.
// Scheduling decisions are made in KST regardless of host timezone
package clock

import "time"

// Clock is the minimal time source the schedulers depend on
type Clock interface {
	Now() time.Time
}

// Func adapts a plain func to Clock
type Func func() time.Time

// Now implements Clock
func (f Func) Now() time.Time { return f() }

// System is the wall clock
var System Clock = Func(time.Now)

// kst is fixed offset so the binary does not depend on the host tzdata
var kst = time.FixedZone("Asia/Seoul", 9*60*60)

// KST returns the service timezone
func KST() *time.Location { return kst }

// NowKST returns the clock's current time in the service timezone
func NowKST(c Clock) time.Time {
	if c == nil {
		c = System
	}
	return c.Now().In(kst)
}

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
