// File: database/repository/webhook/webhook_mongo.go
package webhookRepo

import (
	"context"
	"fmt"
	"time"

	"flowdesk/database"
	"flowdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWebhookRepo implements WebhookRepository using MongoDB.
type MongoWebhookRepo struct {
	coll *mongo.Collection
}

// NewMongoWebhookRepo creates a new instance of WebhookRepository using MongoDB.
func NewMongoWebhookRepo() WebhookRepository {
	coll := database.GetDatabase().Collection("webhooks")
	repo := &MongoWebhookRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoWebhookRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "active", Value: 1}, {Key: "events", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new subscription document.
func (r *MongoWebhookRepo) Create(sub *models.WebhookSubscription) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	return nil
}

// GetByID retrieves a subscription owned by the user.
func (r *MongoWebhookRepo) GetByID(userID, id string) (*models.WebhookSubscription, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var sub models.WebhookSubscription
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "user_id": userID}).Decode(&sub); err != nil {
		return nil, fmt.Errorf("failed to fetch webhook with id %s: %w", id, err)
	}
	return &sub, nil
}

// ListByUser returns all subscriptions of the user.
func (r *MongoWebhookRepo) ListByUser(userID string) ([]models.WebhookSubscription, error) {
	return r.list(bson.M{"user_id": userID})
}

// ListActiveForEvent returns active subscriptions listening for the event.
func (r *MongoWebhookRepo) ListActiveForEvent(userID, event string) ([]models.WebhookSubscription, error) {
	return r.list(bson.M{"user_id": userID, "active": true, "events": event})
}

func (r *MongoWebhookRepo) list(filter bson.M) ([]models.WebhookSubscription, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	defer cur.Close(ctx)

	subs := []models.WebhookSubscription{}
	if err := cur.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("failed to decode webhooks: %w", err)
	}
	return subs, nil
}

// Update modifies the mutable fields of a subscription. The stored secret
// is never touched.
func (r *MongoWebhookRepo) Update(sub *models.WebhookSubscription) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": sub.ID, "user_id": sub.UserID}
	update := bson.M{"$set": bson.M{
		"name":       sub.Name,
		"url":        sub.URL,
		"events":     sub.Events,
		"active":     sub.Active,
		"updated_at": time.Now(),
	}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update webhook with id %s: %w", sub.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("webhook with id %s not found", sub.ID)
	}
	return nil
}

// Delete removes a subscription owned by the user.
func (r *MongoWebhookRepo) Delete(userID, id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete webhook with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("webhook with id %s not found", id)
	}
	return nil
}

// RecordDelivery updates the outcome counters and last-attempt time.
func (r *MongoWebhookRepo) RecordDelivery(id string, success bool, at time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	counter := "failure_count"
	if success {
		counter = "success_count"
	}
	update := bson.M{
		"$set": bson.M{"last_triggered": at, "updated_at": at},
		"$inc": bson.M{counter: 1},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record webhook delivery for %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("webhook with id %s not found", id)
	}
	return nil
}
