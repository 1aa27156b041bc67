// internal/repository/mongo/block_rule_repo.go
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

const blockRuleCollectionName = "block_rules"

// mongoBlockRuleRepository implements repository.BlockRuleRepository
type mongoBlockRuleRepository struct {
	collection *mongo.Collection
}

// NewMongoBlockRuleRepository creates a new BlockRule repository.
func NewMongoBlockRuleRepository(db *mongo.Database) repository.BlockRuleRepository {
	return &mongoBlockRuleRepository{
		collection: db.Collection(blockRuleCollectionName),
	}
}

// Create inserts a new block rule. A rule is date-shaped or weekday-shaped,
// never both and never neither.
func (r *mongoBlockRuleRepository) Create(ctx context.Context, rule *domain.BlockRule) (primitive.ObjectID, error) {
	if rule.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("block rule requires coachId")
	}
	if (rule.Date == nil) == (rule.Weekday == nil) {
		return primitive.NilObjectID, errors.New("block rule requires exactly one of date or weekday")
	}
	rule.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted rule ID")
	}
	return insertedID, nil
}

// GetByCoachID retrieves the coach's full rule set. Scoping to a particular
// client happens inside the blocked-date predicate, not in the query.
func (r *mongoBlockRuleRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.BlockRule, error) {
	var rules []domain.BlockRule
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// Delete removes a rule. The filter ensures the rule belongs to the coach.
func (r *mongoBlockRuleRepository) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	if id == primitive.NilObjectID || coachID == primitive.NilObjectID {
		return errors.New("rule ID and coach ID are required for deletion")
	}
	filter := bson.M{"_id": id, "coachId": coachID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound // Rule not found OR not owned by this coach
	}
	return nil
}

// EnsureBlockRuleIndexes creates necessary indexes. Call during startup.
func EnsureBlockRuleIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
