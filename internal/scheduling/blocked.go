package scheduling

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/domain"
)

// IsBlocked reports whether date is unusable for the given client under the
// supplied rules. A rule matches when its scope covers the client (global rules
// always do) and either its specific date equals the input date or its weekday
// equals the input date's weekday. Redundant and overlapping rules are fine; a
// date blocked twice is simply blocked.
//
// Passing primitive.NilObjectID as clientID means "no client scope": only
// global rules are considered, so one client's rules never leak onto another.
func IsBlocked(date time.Time, clientID primitive.ObjectID, rules []domain.BlockRule) bool {
	day := Day(date)
	for i := range rules {
		rule := &rules[i]
		if !rule.IsGlobal() {
			if clientID == primitive.NilObjectID || *rule.ClientID != clientID {
				continue
			}
		}
		if rule.Date != nil && Day(*rule.Date).Equal(day) {
			return true
		}
		if rule.Weekday != nil && *rule.Weekday == day.Weekday() {
			return true
		}
	}
	return false
}
