package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"coachplan/scheduling-app/internal/domain"
	"coachplan/scheduling-app/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionNotBelongToUser  = errors.New("session does not belong to this client")
	ErrSessionAlreadyCompleted = errors.New("session is already completed")
)

// CompleteSessionResult couples the completed session with the reschedule
// summary for the rest of the client's plan.
type CompleteSessionResult struct {
	Session    *domain.Session   `json:"session"`
	Reschedule *RescheduleResult `json:"reschedule"`
}

// --- Service Interface ---
type ClientService interface {
	GetMySessions(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error)
	CompleteSession(ctx context.Context, clientID, sessionID primitive.ObjectID, now time.Time) (*CompleteSessionResult, error)
}

// --- Service Implementation ---

// clientService implements the ClientService interface.
type clientService struct {
	sessionRepo repository.SessionRepository
	scheduler   SchedulerService
	logger      *zap.Logger
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	sessionRepo repository.SessionRepository,
	scheduler SchedulerService,
	logger *zap.Logger,
) ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &clientService{
		sessionRepo: sessionRepo,
		scheduler:   scheduler,
		logger:      logger,
	}
}

// GetMySessions retrieves the client's sessions, pending and completed,
// ordered by scheduled date.
func (s *clientService) GetMySessions(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.sessionRepo.GetByClientID(ctx, clientID)
}

// CompleteSession marks one of the client's sessions completed and then slides
// the remainder of the plan forward. Completion is terminal; the reschedule
// pass never touches the session again. A late completion is exactly the
// trigger the weekday-preserving reschedule exists for.
func (s *clientService) CompleteSession(ctx context.Context, clientID, sessionID primitive.ObjectID, now time.Time) (*CompleteSessionResult, error) {
	if clientID == primitive.NilObjectID || sessionID == primitive.NilObjectID {
		return nil, errors.New("client ID and session ID are required")
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.ClientID != clientID {
		return nil, ErrSessionNotBelongToUser
	}
	if session.Completed {
		return nil, ErrSessionAlreadyCompleted
	}

	if err := s.sessionRepo.MarkCompleted(ctx, sessionID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race with another completion of the same session.
			return nil, ErrSessionAlreadyCompleted
		}
		return nil, err
	}
	session.Completed = true
	completedAt := now.UTC()
	session.CompletedAt = &completedAt

	reschedule, err := s.scheduler.RescheduleRemaining(ctx, clientID, sessionID, now)
	if err != nil {
		// The completion itself stuck; report the pass failure without undoing it.
		s.logger.Error("reschedule after completion failed",
			zap.String("client_id", clientID.Hex()),
			zap.String("session_id", sessionID.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	return &CompleteSessionResult{Session: session, Reschedule: reschedule}, nil
}
