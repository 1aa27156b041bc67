package scheduling

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/domain"
)

// PlacementSearchWindowDays bounds how far PlaceProgram scans forward from the
// cursor for a single entry before giving up on the block rules.
const PlacementSearchWindowDays = 30

// SessionDraft is one placement produced by PlaceProgram, ready to be turned
// into a Session row by the caller.
type SessionDraft struct {
	TemplateID    primitive.ObjectID
	Week          int
	Day           int
	ScheduledDate time.Time
	// Fallback marks that no open date existed inside the search window and the
	// draft kept a blocked date. Callers must surface this: it means the coach
	// has blocked nearly the whole calendar.
	Fallback bool
}

// PlaceProgram assigns calendar dates to a plan's template entries, walking the
// calendar forward from startDate one day at a time and skipping dates blocked
// for the client. Entries are placed in (Week, Day) order — input order is not
// trusted — and each entry's search starts strictly after the previous entry's
// date, so drafts never collide regardless of the rules.
//
// A fully blocked stretch degrades per entry to the bounded fallback above
// rather than failing the batch.
func PlaceProgram(entries []domain.TemplateEntry, startDate time.Time, clientID primitive.ObjectID, rules []domain.BlockRule) []SessionDraft {
	ordered := make([]domain.TemplateEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Week != ordered[j].Week {
			return ordered[i].Week < ordered[j].Week
		}
		return ordered[i].Day < ordered[j].Day
	})

	drafts := make([]SessionDraft, 0, len(ordered))
	cursor := Day(startDate)
	for _, entry := range ordered {
		date := cursor
		fallback := true
		for i := 0; i < PlacementSearchWindowDays; i++ {
			if !IsBlocked(date, clientID, rules) {
				fallback = false
				break
			}
			date = date.AddDate(0, 0, 1)
		}
		if fallback {
			// Nothing open within the window; keep the cursor's blocked date so
			// the batch still completes with strictly increasing dates.
			date = cursor
		}
		drafts = append(drafts, SessionDraft{
			TemplateID:    entry.ID,
			Week:          entry.Week,
			Day:           entry.Day,
			ScheduledDate: date,
			Fallback:      fallback,
		})
		cursor = date.AddDate(0, 0, 1)
	}
	return drafts
}
