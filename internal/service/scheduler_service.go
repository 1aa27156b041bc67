package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"coachplan/scheduling-app/internal/domain"
	"coachplan/scheduling-app/internal/metrics"
	"coachplan/scheduling-app/internal/repository"
	"coachplan/scheduling-app/internal/scheduling"
)

// UpdateFailure records one session whose new date could not be persisted.
type UpdateFailure struct {
	SessionID primitive.ObjectID `json:"sessionId"`
	Error     string             `json:"error"`
}

// RescheduleResult summarizes one reschedule pass for the caller.
type RescheduleResult struct {
	Moved     int             `json:"moved"`
	Fallbacks int             `json:"fallbacks"`
	Failures  []UpdateFailure `json:"failures,omitempty"`
}

// --- Service Interface ---

// SchedulerService runs the weekday-preserving reschedule over a client's
// remaining plan. The caller supplies "today" explicitly so passes are
// deterministic under test.
type SchedulerService interface {
	RescheduleRemaining(ctx context.Context, clientID, excludeSessionID primitive.ObjectID, today time.Time) (*RescheduleResult, error)
}

// --- Service Implementation ---

type schedulerService struct {
	sessionRepo repository.SessionRepository
	ruleRepo    repository.BlockRuleRepository
	userRepo    repository.UserRepository
	logger      *zap.Logger

	// Per-client locks: two completions for the same client must not interleave
	// their passes, or both can claim the same dates.
	mu          sync.Mutex
	clientLocks map[primitive.ObjectID]*sync.Mutex
}

// NewSchedulerService creates a new instance of schedulerService.
func NewSchedulerService(
	sessionRepo repository.SessionRepository,
	ruleRepo repository.BlockRuleRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) SchedulerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &schedulerService{
		sessionRepo: sessionRepo,
		ruleRepo:    ruleRepo,
		userRepo:    userRepo,
		logger:      logger,
		clientLocks: make(map[primitive.ObjectID]*sync.Mutex),
	}
}

func (s *schedulerService) lockClient(clientID primitive.ObjectID) *sync.Mutex {
	s.mu.Lock()
	lock, ok := s.clientLocks[clientID]
	if !ok {
		lock = &sync.Mutex{}
		s.clientLocks[clientID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock
}

// RescheduleRemaining slides a client's overdue sessions forward after one of
// them completed late. It fetches the pending sessions and the coach's block
// rules, computes the full plan up front, then applies the updates one by one
// in plan order. A single failed write is logged and skipped; the rest of the
// batch still goes through.
func (s *schedulerService) RescheduleRemaining(ctx context.Context, clientID, excludeSessionID primitive.ObjectID, today time.Time) (*RescheduleResult, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}

	lock := s.lockClient(clientID)
	defer lock.Unlock()

	sessions, err := s.sessionRepo.GetPendingByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	rules, err := s.blockRulesForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	plan := scheduling.PlanReschedule(sessions, excludeSessionID, today, clientID, rules)

	passLog := s.logger.With(
		zap.String("pass_id", uuid.NewString()),
		zap.String("client_id", clientID.Hex()),
	)

	if plan.IsNoop() {
		passLog.Info("reschedule pass: nothing to move")
		return &RescheduleResult{}, nil
	}

	result := &RescheduleResult{Fallbacks: plan.Fallbacks}
	for _, update := range plan.Updates {
		if update.Fallback {
			metrics.SchedulingFallbacks.Inc()
			passLog.Warn("reschedule search exhausted, keeping last candidate",
				zap.String("session_id", update.SessionID.Hex()),
				zap.Time("new_date", update.NewDate),
			)
		}
		if err := s.sessionRepo.UpdateScheduledDate(ctx, update.SessionID, update.NewDate); err != nil {
			metrics.RescheduleFailures.Inc()
			passLog.Error("failed to persist rescheduled date",
				zap.String("session_id", update.SessionID.Hex()),
				zap.Time("new_date", update.NewDate),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, UpdateFailure{
				SessionID: update.SessionID,
				Error:     err.Error(),
			})
			continue
		}
		metrics.SessionsRescheduled.Inc()
		result.Moved++
	}

	passLog.Info("reschedule pass complete",
		zap.Int("moved", result.Moved),
		zap.Int("failed", len(result.Failures)),
		zap.Int("fallbacks", result.Fallbacks),
	)
	return result, nil
}

// blockRulesForClient resolves the client's coach and loads that coach's rule
// set. A client without a coach simply has no rules.
func (s *schedulerService) blockRulesForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.BlockRule, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if client.CoachID == nil || *client.CoachID == primitive.NilObjectID {
		return nil, nil
	}
	return s.ruleRepo.GetByCoachID(ctx, *client.CoachID)
}
