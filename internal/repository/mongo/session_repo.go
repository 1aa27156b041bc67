// internal/repository/mongo/session_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coachplan/scheduling-app/internal/domain"
	"coachplan/scheduling-app/internal/repository"
)

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// CreateMany inserts the session rows produced by an initial program placement.
// InsertMany is ordered, matching the drafts' template order.
func (r *mongoSessionRepository) CreateMany(ctx context.Context, sessions []domain.Session) ([]primitive.ObjectID, error) {
	if len(sessions) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(sessions))
	for i := range sessions {
		s := &sessions[i]
		if s.PlanID == primitive.NilObjectID || s.CoachID == primitive.NilObjectID || s.ClientID == primitive.NilObjectID {
			return nil, errors.New("session requires planId, coachId, and clientId")
		}
		s.ID = primitive.NewObjectID()
		s.CreatedAt = now
		s.UpdatedAt = now
		docs = append(docs, s)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(result.InsertedIDs))
	for _, raw := range result.InsertedIDs {
		id, ok := raw.(primitive.ObjectID)
		if !ok {
			return nil, errors.New("failed to convert inserted session ID")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetByID retrieves a single session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByClientID retrieves all of a client's sessions, pending and completed,
// ordered by scheduled date.
func (r *mongoSessionRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error) {
	return r.findSessions(ctx, bson.M{"clientId": clientID})
}

// GetPendingByClientID retrieves completed=false sessions for a client, ordered
// by scheduledDate ascending — the order a reschedule pass consumes them in.
func (r *mongoSessionRepository) GetPendingByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error) {
	return r.findSessions(ctx, bson.M{"clientId": clientID, "completed": false})
}

func (r *mongoSessionRepository) findSessions(ctx context.Context, filter bson.M) ([]domain.Session, error) {
	var sessions []domain.Session
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledDate", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// UpdateScheduledDate overwrites one session's placement. Completed sessions
// are immutable, so the filter excludes them.
func (r *mongoSessionRepository) UpdateScheduledDate(ctx context.Context, id primitive.ObjectID, date time.Time) error {
	filter := bson.M{"_id": id, "completed": false}
	update := bson.M{
		"$set": bson.M{
			"scheduledDate": date,
			"updatedAt":     time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound // Missing, or already completed
	}
	return nil
}

// MarkCompleted flips a session to its terminal completed state.
func (r *mongoSessionRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, completedAt time.Time) error {
	filter := bson.M{"_id": id, "completed": false}
	update := bson.M{
		"$set": bson.M{
			"completed":   true,
			"completedAt": completedAt.UTC(),
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// The reschedule pass query: pending sessions per client by date.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "completed", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
