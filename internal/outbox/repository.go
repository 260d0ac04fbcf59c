package outbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OutboxRepository handles DB operations for outbox emails.
type OutboxRepository struct {
	collection *mongo.Collection
}

// NewOutboxRepository creates a new repository for outbox emails.
func NewOutboxRepository(db *mongo.Database) *OutboxRepository {
	return &OutboxRepository{collection: db.Collection("outbox_emails")}
}

// QueueEmails inserts the rendered emails, skipping rows that already exist
// for their (plan, student) pair. Returns the number actually inserted.
func (r *OutboxRepository) QueueEmails(ctx context.Context, emails []OutboxEmail) (int, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(emails))
	for _, email := range emails {
		docs = append(docs, email)
	}
	// Unordered insert keeps going past duplicate-key errors, which is how
	// re-queueing a plan stays idempotent.
	opts := options.InsertMany().SetOrdered(false)
	res, err := r.collection.InsertMany(ctx, docs, opts)
	return countInserted(res, err)
}

// countInserted interprets an unordered InsertMany outcome. Duplicate-key
// errors mean rows were already queued for their (plan, student) pair and are
// not failures; anything else surfaces.
func countInserted(res *mongo.InsertManyResult, err error) (int, error) {
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return 0, err
	}
	if res == nil {
		return 0, nil
	}
	return len(res.InsertedIDs), nil
}

// FindByPlan returns a plan's outbox rows, optionally restricted to a set of
// student ids, newest first.
func (r *OutboxRepository) FindByPlan(ctx context.Context, planID primitive.ObjectID, studentIDs []primitive.ObjectID) ([]OutboxEmail, error) {
	filter := bson.M{"plan_id": planID}
	if studentIDs != nil {
		filter["student_id"] = bson.M{"$in": studentIDs}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var emails []OutboxEmail
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// FindQueued fetches emails still waiting to be sent.
func (r *OutboxRepository) FindQueued(ctx context.Context, limit int64) ([]OutboxEmail, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"status": StatusQueued}, opts)
	if err != nil {
		return nil, err
	}
	var emails []OutboxEmail
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// MarkSent records a successful delivery.
func (r *OutboxRepository) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"status": StatusSent, "sent_at": time.Now()}}
	_, err := r.collection.UpdateByID(ctx, id, update)
	return err
}

// MarkFailed records a failed delivery attempt.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"status": StatusFailed}}
	_, err := r.collection.UpdateByID(ctx, id, update)
	return err
}
