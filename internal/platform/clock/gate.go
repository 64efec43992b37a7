package clock

import (
	"fmt"
	"time"
)

// Gate decides whether a scheduled run may proceed. All checks happen in a
// fixed timezone so host clock settings never shift the window
type Gate struct {
	Loc  *time.Location
	From int // window start, minutes since midnight, inclusive
	Till int // window end, minutes since midnight, exclusive

	// IsHoliday is an extension point; the default never fires.
	// Weekends are handled separately and are not the predicate's job
	IsHoliday func(t time.Time) bool
}

// NewGate returns a weekday gate for the given KST minute window
func NewGate(from, till int) Gate {
	return Gate{
		Loc:  KST(),
		From: from,
		Till: till,
	}
}

// Check reports whether now falls inside the run window.
// reason is empty when ok
func (g Gate) Check(now time.Time) (ok bool, reason string) {
	loc := g.Loc
	if loc == nil {
		loc = KST()
	}
	t := now.In(loc)

	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false, fmt.Sprintf("weekend (%s)", t.Weekday())
	}
	if g.IsHoliday != nil && g.IsHoliday(t) {
		return false, "holiday"
	}

	minute := t.Hour()*60 + t.Minute()
	if minute < g.From || minute >= g.Till {
		return false, fmt.Sprintf("outside window (%02d:%02d)", t.Hour(), t.Minute())
	}
	return true, ""
}
