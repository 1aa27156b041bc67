package scheduling

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/domain"
)

// MaxRescheduleWeekJumps bounds how many one-week advances a single session may
// take while resolving collisions and blocked dates before the pass gives up on
// it and flags a fallback.
const MaxRescheduleWeekJumps = 52

// SessionUpdate is one date move computed by PlanReschedule.
type SessionUpdate struct {
	SessionID primitive.ObjectID
	OldDate   time.Time
	NewDate   time.Time
	// Fallback marks that the week-jump bound was hit; NewDate is the last
	// candidate tried and may still collide or sit on a blocked date.
	Fallback bool
}

// ReschedulePlan is the full outcome of one reschedule pass, in apply order.
type ReschedulePlan struct {
	Updates   []SessionUpdate
	Fallbacks int
}

// IsNoop reports whether the pass found nothing to move.
func (p ReschedulePlan) IsNoop() bool {
	return len(p.Updates) == 0
}

// PlanReschedule computes new dates for a client's overdue sessions after one of
// them completed late. Sessions dated on or before today slide forward; each
// keeps the weekday of its current scheduled date and the group keeps its
// original relative order. Sessions already in the future stay put but their
// dates are off-limits to the moved ones.
//
// The search walks day by day from today+1 to the first occurrence of the
// session's weekday, then resolves collisions and blocked dates by whole-week
// jumps only, which preserve the weekday by construction. The completed session
// (excludeID) and anything already completed are ignored entirely.
func PlanReschedule(sessions []domain.Session, excludeID primitive.ObjectID, today time.Time, clientID primitive.ObjectID, rules []domain.BlockRule) ReschedulePlan {
	// Partition once against a single normalized "today" so the pass is
	// consistent even if the wall clock rolls over mid-request.
	anchor := Day(today)
	var toReschedule []domain.Session
	claimed := make(map[time.Time]bool)
	for _, s := range sessions {
		if s.Completed || s.ID == excludeID {
			continue
		}
		date := Day(s.ScheduledDate)
		if date.After(anchor) {
			claimed[date] = true
		} else {
			toReschedule = append(toReschedule, s)
		}
	}

	var plan ReschedulePlan
	if len(toReschedule) == 0 {
		return plan
	}

	sort.SliceStable(toReschedule, func(i, j int) bool {
		return toReschedule[i].ScheduledDate.Before(toReschedule[j].ScheduledDate)
	})

	cursor := anchor.AddDate(0, 0, 1)
	for _, s := range toReschedule {
		// Weekday origin is read from the stored date before any mutation.
		target := Day(s.ScheduledDate).Weekday()

		candidate := cursor
		for candidate.Weekday() != target {
			candidate = candidate.AddDate(0, 0, 1)
		}

		fallback := false
		for jumps := 0; claimed[candidate] || IsBlocked(candidate, clientID, rules); jumps++ {
			if jumps >= MaxRescheduleWeekJumps {
				fallback = true
				break
			}
			candidate = candidate.AddDate(0, 0, 7)
		}

		claimed[candidate] = true
		plan.Updates = append(plan.Updates, SessionUpdate{
			SessionID: s.ID,
			OldDate:   Day(s.ScheduledDate),
			NewDate:   candidate,
			Fallback:  fallback,
		})
		if fallback {
			plan.Fallbacks++
		}
		// Later sessions search strictly after this one; that is what keeps the
		// group's relative order intact.
		cursor = candidate.AddDate(0, 0, 1)
	}
	return plan
}
