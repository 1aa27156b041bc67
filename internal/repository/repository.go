package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coachplan/scheduling-app/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error
	GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error)
	GetByClientAndCoachID(ctx context.Context, clientID, coachID primitive.ObjectID) ([]domain.TrainingPlan, error)
}

// SessionRepository is the keyed session store both schedulers work against.
// GetPendingByClientID returns completed=false sessions ordered by scheduledDate
// ascending, which is the order a reschedule pass consumes them in.
type SessionRepository interface {
	CreateMany(ctx context.Context, sessions []domain.Session) ([]primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error)
	GetPendingByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error)
	UpdateScheduledDate(ctx context.Context, id primitive.ObjectID, date time.Time) error
	MarkCompleted(ctx context.Context, id primitive.ObjectID, completedAt time.Time) error
}

// BlockRuleRepository defines the interface for interacting with block rules.
// The scheduling engine only ever reads rules; create/delete serve the coach's
// configuration endpoints.
type BlockRuleRepository interface {
	Create(ctx context.Context, rule *domain.BlockRule) (primitive.ObjectID, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.BlockRule, error)
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}
