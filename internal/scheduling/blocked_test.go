package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time { return &t }

func weekdayPtr(w time.Weekday) *time.Weekday { return &w }

func dateRule(d time.Time, clientID *primitive.ObjectID) domain.BlockRule {
	return domain.BlockRule{ID: primitive.NewObjectID(), ClientID: clientID, Date: datePtr(d)}
}

func weekdayRule(w time.Weekday, clientID *primitive.ObjectID) domain.BlockRule {
	return domain.BlockRule{ID: primitive.NewObjectID(), ClientID: clientID, Weekday: weekdayPtr(w)}
}

func TestIsBlockedSpecificDate(t *testing.T) {
	client := primitive.NewObjectID()
	rules := []domain.BlockRule{dateRule(date(2024, time.March, 15), nil)}

	assert.True(t, IsBlocked(date(2024, time.March, 15), client, rules))
	assert.False(t, IsBlocked(date(2024, time.March, 14), client, rules))
	assert.False(t, IsBlocked(date(2024, time.March, 16), client, rules))
}

func TestIsBlockedNormalizesTimeOfDay(t *testing.T) {
	client := primitive.NewObjectID()
	ruleDate := time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC)
	rules := []domain.BlockRule{dateRule(ruleDate, nil)}

	morning := time.Date(2024, time.March, 15, 7, 5, 0, 0, time.UTC)
	assert.True(t, IsBlocked(morning, client, rules))
}

func TestIsBlockedWeekday(t *testing.T) {
	client := primitive.NewObjectID()
	rules := []domain.BlockRule{weekdayRule(time.Sunday, nil)}

	assert.True(t, IsBlocked(date(2024, time.January, 7), client, rules))  // a Sunday
	assert.False(t, IsBlocked(date(2024, time.January, 8), client, rules)) // a Monday
}

func TestIsBlockedClientScoping(t *testing.T) {
	c1 := primitive.NewObjectID()
	c2 := primitive.NewObjectID()
	rules := []domain.BlockRule{weekdayRule(time.Wednesday, &c1)}

	wednesday := date(2024, time.January, 10)
	assert.True(t, IsBlocked(wednesday, c1, rules))
	assert.False(t, IsBlocked(wednesday, c2, rules), "client rules must not leak across clients")
}

func TestIsBlockedNoClientScopeOnlyGlobalRulesApply(t *testing.T) {
	c1 := primitive.NewObjectID()
	wednesday := date(2024, time.January, 10)
	rules := []domain.BlockRule{
		weekdayRule(time.Wednesday, &c1),
		dateRule(date(2024, time.January, 11), nil),
	}

	assert.False(t, IsBlocked(wednesday, primitive.NilObjectID, rules))
	assert.True(t, IsBlocked(date(2024, time.January, 11), primitive.NilObjectID, rules))
}

func TestIsBlockedRedundantRulesAreIdempotent(t *testing.T) {
	client := primitive.NewObjectID()
	monday := date(2024, time.January, 8)
	rules := []domain.BlockRule{
		weekdayRule(time.Monday, nil),
		weekdayRule(time.Monday, &client),
		dateRule(monday, nil),
	}

	assert.True(t, IsBlocked(monday, client, rules))
}

func TestIsBlockedEmptyRules(t *testing.T) {
	assert.False(t, IsBlocked(date(2024, time.June, 1), primitive.NewObjectID(), nil))
}

func TestDayNormalizesToMidnightUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2024, time.May, 2, 1, 30, 0, 0, loc) // 2024-05-01T22:30Z
	assert.Equal(t, date(2024, time.May, 1), Day(in))
}
