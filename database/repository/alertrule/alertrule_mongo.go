// File: database/repository/alertrule/alertrule_mongo.go
package alertRepo

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

// MongoAlertRuleRepo implements AlertRuleRepository using MongoDB.
type MongoAlertRuleRepo struct {
	coll *mongo.Collection
}

// NewMongoAlertRuleRepo creates a new instance of AlertRuleRepository using MongoDB.
func NewMongoAlertRuleRepo() AlertRuleRepository {
	coll := database.GetDatabase().Collection("alert_rules")
	repo := &MongoAlertRuleRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoAlertRuleRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "module", Value: 1}, {Key: "enabled", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new rule document.
func (r *MongoAlertRuleRepo) Create(rule *models.AlertRule) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create alert rule: %w", err)
	}
	return nil
}

// GetByID retrieves a rule owned by the user.
func (r *MongoAlertRuleRepo) GetByID(userID, id string) (*models.AlertRule, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var rule models.AlertRule
	if err := r.coll.FindOne(ctx, bson.M{"id": id, "user_id": userID}).Decode(&rule); err != nil {
		return nil, fmt.Errorf("failed to fetch alert rule with id %s: %w", id, err)
	}
	return &rule, nil
}

// ListByUser returns all rules of the user.
func (r *MongoAlertRuleRepo) ListByUser(userID string) ([]models.AlertRule, error) {
	return r.list(bson.M{"user_id": userID})
}

// ListEnabled returns the user's enabled rules for a business module.
func (r *MongoAlertRuleRepo) ListEnabled(userID string, module models.BusinessModule) ([]models.AlertRule, error) {
	return r.list(bson.M{"user_id": userID, "module": module, "enabled": true})
}

func (r *MongoAlertRuleRepo) list(filter bson.M) ([]models.AlertRule, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list alert rules: %w", err)
	}
	defer cur.Close(ctx)

	rules := []models.AlertRule{}
	if err := cur.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode alert rules: %w", err)
	}
	return rules, nil
}

// Update modifies an existing rule document.
func (r *MongoAlertRuleRepo) Update(rule *models.AlertRule) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	rule.UpdatedAt = time.Now()
	filter := bson.M{"id": rule.ID, "user_id": rule.UserID}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": rule})
	if err != nil {
		return fmt.Errorf("failed to update alert rule with id %s: %w", rule.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("alert rule with id %s not found", rule.ID)
	}
	return nil
}

// SetEnabled toggles a rule on or off.
func (r *MongoAlertRuleRepo) SetEnabled(userID, id string, enabled bool) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "user_id": userID}
	update := bson.M{"$set": bson.M{"enabled": enabled, "updated_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to toggle alert rule with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("alert rule with id %s not found", id)
	}
	return nil
}

// Delete removes a rule owned by the user.
func (r *MongoAlertRuleRepo) Delete(userID, id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete alert rule with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("alert rule with id %s not found", id)
	}
	return nil
}

// RecordTrigger bumps the trigger counter and timestamp after a fire.
func (r *MongoAlertRuleRepo) RecordTrigger(id string, at time.Time) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_triggered": at, "updated_at": at},
		"$inc": bson.M{"trigger_count": 1},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record trigger for alert rule %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("alert rule with id %s not found", id)
	}
	return nil
}
