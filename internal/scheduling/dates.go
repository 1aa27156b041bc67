// Package scheduling holds the calendar placement engine: the blocked-date
// predicate, initial program placement, and the weekday-preserving reschedule.
// Everything here is pure — callers pass "today" and the rule set in explicitly,
// and persistence of the results belongs to the service layer.
package scheduling

import "time"

// Day normalizes a timestamp to midnight UTC. Every date the engine compares,
// claims, or returns goes through this first; time-of-day never participates.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
