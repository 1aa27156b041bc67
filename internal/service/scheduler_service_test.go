package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pendingSession(clientID primitive.ObjectID, scheduled time.Time) domain.Session {
	return domain.Session{
		ID:            primitive.NewObjectID(),
		PlanID:        primitive.NewObjectID(),
		TemplateID:    primitive.NewObjectID(),
		CoachID:       primitive.NewObjectID(),
		ClientID:      clientID,
		Name:          "Squat Day",
		ScheduledDate: scheduled,
	}
}

func clientWithCoach(coachID primitive.ObjectID) domain.User {
	return domain.User{
		ID:      primitive.NewObjectID(),
		Name:    "Client",
		Email:   "client@example.com",
		Role:    domain.RoleClient,
		CoachID: &coachID,
	}
}

func TestRescheduleRemaining_MovesOverdueSessionsToSameWeekday(t *testing.T) {
	coachID := primitive.NewObjectID()
	client := clientWithCoach(coachID)

	monday := pendingSession(client.ID, day(2024, time.January, 8))     // Monday, overdue
	wednesday := pendingSession(client.ID, day(2024, time.January, 10)) // Wednesday, overdue

	sessionRepo := newFakeSessionRepo(monday, wednesday)
	userRepo := newFakeUserRepo(client)
	svc := NewSchedulerService(sessionRepo, &fakeRuleRepo{}, userRepo, nil)

	// Thursday: both sessions are in the past.
	result, err := svc.RescheduleRemaining(context.Background(), client.ID, primitive.NilObjectID, day(2024, time.January, 11))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Moved)
	assert.Equal(t, 0, result.Fallbacks)
	assert.Empty(t, result.Failures)

	moved, err := sessionRepo.GetByID(context.Background(), monday.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.January, 15), moved.ScheduledDate)

	moved, err = sessionRepo.GetByID(context.Background(), wednesday.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.January, 17), moved.ScheduledDate)

	// Earlier session is written first.
	require.Len(t, sessionRepo.applied, 2)
	assert.Equal(t, monday.ID, sessionRepo.applied[0])
	assert.Equal(t, wednesday.ID, sessionRepo.applied[1])
}

func TestRescheduleRemaining_NoopPerformsZeroWrites(t *testing.T) {
	coachID := primitive.NewObjectID()
	client := clientWithCoach(coachID)

	future := pendingSession(client.ID, day(2024, time.January, 20))
	sessionRepo := newFakeSessionRepo(future)
	svc := NewSchedulerService(sessionRepo, &fakeRuleRepo{}, newFakeUserRepo(client), nil)

	result, err := svc.RescheduleRemaining(context.Background(), client.ID, primitive.NilObjectID, day(2024, time.January, 11))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Moved)
	assert.Empty(t, sessionRepo.applied)

	kept, err := sessionRepo.GetByID(context.Background(), future.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.January, 20), kept.ScheduledDate)
}

func TestRescheduleRemaining_FailedWriteIsSkippedNotFatal(t *testing.T) {
	coachID := primitive.NewObjectID()
	client := clientWithCoach(coachID)

	first := pendingSession(client.ID, day(2024, time.January, 8))  // Monday
	second := pendingSession(client.ID, day(2024, time.January, 9)) // Tuesday
	third := pendingSession(client.ID, day(2024, time.January, 10)) // Wednesday

	sessionRepo := newFakeSessionRepo(first, second, third)
	sessionRepo.updateErrs[second.ID] = errors.New("write timed out")
	svc := NewSchedulerService(sessionRepo, &fakeRuleRepo{}, newFakeUserRepo(client), nil)

	result, err := svc.RescheduleRemaining(context.Background(), client.ID, primitive.NilObjectID, day(2024, time.January, 11))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Moved)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, second.ID, result.Failures[0].SessionID)
	assert.Contains(t, result.Failures[0].Error, "write timed out")

	// The sessions around the failure still moved.
	moved, err := sessionRepo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.January, 15), moved.ScheduledDate)

	moved, err = sessionRepo.GetByID(context.Background(), third.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.January, 17), moved.ScheduledDate)

	// The failed one keeps its old date.
	kept, err := sessionRepo.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.January, 9), kept.ScheduledDate)
}

func TestRescheduleRemaining_AppliesCoachBlockRules(t *testing.T) {
	coachID := primitive.NewObjectID()
	client := clientWithCoach(coachID)

	monday := pendingSession(client.ID, day(2024, time.January, 8))
	sessionRepo := newFakeSessionRepo(monday)

	blocked := day(2024, time.January, 15) // the Monday the session would land on
	ruleRepo := &fakeRuleRepo{rules: []domain.BlockRule{
		{ID: primitive.NewObjectID(), CoachID: coachID, Date: &blocked, Reason: "gym closed"},
	}}
	svc := NewSchedulerService(sessionRepo, ruleRepo, newFakeUserRepo(client), nil)

	result, err := svc.RescheduleRemaining(context.Background(), client.ID, primitive.NilObjectID, day(2024, time.January, 11))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Moved)

	moved, err := sessionRepo.GetByID(context.Background(), monday.ID)
	require.NoError(t, err)
	// Blocked Monday is skipped; the next Monday is taken instead.
	assert.Equal(t, day(2024, time.January, 22), moved.ScheduledDate)
}

func TestRescheduleRemaining_ClientWithoutCoachHasNoRules(t *testing.T) {
	client := domain.User{
		ID:    primitive.NewObjectID(),
		Email: "solo@example.com",
		Role:  domain.RoleClient,
	}
	monday := pendingSession(client.ID, day(2024, time.January, 8))
	sessionRepo := newFakeSessionRepo(monday)
	svc := NewSchedulerService(sessionRepo, &fakeRuleRepo{}, newFakeUserRepo(client), nil)

	result, err := svc.RescheduleRemaining(context.Background(), client.ID, primitive.NilObjectID, day(2024, time.January, 11))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Moved)
}

func TestRescheduleRemaining_ExcludedSessionIsNotMoved(t *testing.T) {
	coachID := primitive.NewObjectID()
	client := clientWithCoach(coachID)

	justCompleted := pendingSession(client.ID, day(2024, time.January, 8))
	other := pendingSession(client.ID, day(2024, time.January, 10))

	sessionRepo := newFakeSessionRepo(justCompleted, other)
	svc := NewSchedulerService(sessionRepo, &fakeRuleRepo{}, newFakeUserRepo(client), nil)

	result, err := svc.RescheduleRemaining(context.Background(), client.ID, justCompleted.ID, day(2024, time.January, 11))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Moved)

	kept, err := sessionRepo.GetByID(context.Background(), justCompleted.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.January, 8), kept.ScheduledDate)
}

func TestRescheduleRemaining_RequiresClientID(t *testing.T) {
	svc := NewSchedulerService(newFakeSessionRepo(), &fakeRuleRepo{}, newFakeUserRepo(), nil)

	_, err := svc.RescheduleRemaining(context.Background(), primitive.NilObjectID, primitive.NilObjectID, day(2024, time.January, 11))
	assert.Error(t, err)
}
