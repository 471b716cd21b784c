package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"honeypot-service/internal/models"
	"honeypot-service/internal/repository"
)

const attacksCollection = "attacks"

// AttackRepository is the MongoDB implementation of repository.AttackStore.
// Grouping and bucketing run server-side as aggregation pipelines; the
// repository never interprets the counts it returns.
type AttackRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewAttackRepository creates the repository over the attacks collection.
func NewAttackRepository(client *Client, logger *zap.Logger) *AttackRepository {
	return &AttackRepository{
		collection: client.Collection(attacksCollection),
		logger:     logger,
	}
}

func matchFilter(filter repository.EventFilter) bson.M {
	if filter.TimestampGTE == "" {
		return bson.M{}
	}
	return bson.M{"timestamp": bson.M{"$gte": filter.TimestampGTE}}
}

// Insert appends one event. Events are independent documents; the single
// insert is the whole durability contract.
func (r *AttackRepository) Insert(ctx context.Context, event *models.AttackEvent) error {
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to insert attack event: %w", err)
	}
	return nil
}

// Find returns a page of events sorted newest first.
func (r *AttackRepository) Find(ctx context.Context, filter repository.EventFilter, skip, limit int64) ([]models.AttackEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit).
		SetProjection(bson.M{"_id": 0})

	cursor, err := r.collection.Find(ctx, matchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query attack events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []models.AttackEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode attack events: %w", err)
	}
	return events, nil
}

// Count returns the number of events matching the filter.
func (r *AttackRepository) Count(ctx context.Context, filter repository.EventFilter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, matchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count attack events: %w", err)
	}
	return count, nil
}

// Distinct returns the distinct values of a document field.
func (r *AttackRepository) Distinct(ctx context.Context, field string) ([]string, error) {
	raw, err := r.collection.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s values: %w", field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			values = append(values, s)
		}
	}
	return values, nil
}

// GroupCount runs a group-and-count pipeline over the grouping keys in spec,
// applying $substr for substring keys (date and hour buckets).
func (r *AttackRepository) GroupCount(ctx context.Context, spec repository.GroupSpec) ([]repository.GroupCount, error) {
	pipeline := mongo.Pipeline{}
	if spec.Filter.TimestampGTE != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: matchFilter(spec.Filter)}})
	}

	groupID := bson.D{}
	for i, key := range spec.Keys {
		var expr interface{} = "$" + key.Field
		if key.SubstrLen > 0 {
			expr = bson.D{{Key: "$substr", Value: bson.A{"$" + key.Field, key.SubstrStart, key.SubstrLen}}}
		}
		groupID = append(groupID, bson.E{Key: fmt.Sprintf("k%d", i), Value: expr})
	}

	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: groupID},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}})

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to run group-count aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    bson.M `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation results: %w", err)
	}

	results := make([]repository.GroupCount, 0, len(rows))
	for _, row := range rows {
		keys := make([]string, len(spec.Keys))
		for i := range spec.Keys {
			if s, ok := row.ID[fmt.Sprintf("k%d", i)].(string); ok {
				keys[i] = s
			}
		}
		results = append(results, repository.GroupCount{Keys: keys, Count: row.Count})
	}
	return results, nil
}

// DeleteAll removes every event and returns the number deleted.
func (r *AttackRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear attack events: %w", err)
	}
	r.logger.Info("Attack events cleared", zap.Int64("deleted", res.DeletedCount))
	return res.DeletedCount, nil
}
