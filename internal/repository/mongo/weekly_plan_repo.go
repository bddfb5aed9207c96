// internal/repository/mongo/weekly_plan_repo.go
package mongo

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const weeklyPlanCollectionName = "weekly_plans"

// mongoWeeklyPlanRepository implements repository.WeeklyPlanRepository
type mongoWeeklyPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoWeeklyPlanRepository creates a new WeeklyPlan repository.
func NewMongoWeeklyPlanRepository(db *mongo.Database) repository.WeeklyPlanRepository {
	return &mongoWeeklyPlanRepository{
		collection: db.Collection(weeklyPlanCollectionName),
	}
}

// Create inserts a new weekly plan.
func (r *mongoWeeklyPlanRepository) Create(ctx context.Context, plan *domain.WeeklyPlan) error {
	if plan.ClientID == "" || plan.Name == "" {
		return errors.New("plan requires clientId and name")
	}
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

// GetByID retrieves a single weekly plan of the organization.
func (r *mongoWeeklyPlanRepository) GetByID(ctx context.Context, orgID string, id primitive.ObjectID) (*domain.WeeklyPlan, error) {
	return findOne[domain.WeeklyPlan](ctx, r.collection, tenantFilter(orgID, id))
}

// ListByClient retrieves every plan of a client, latest week first.
func (r *mongoWeeklyPlanRepository) ListByClient(ctx context.Context, orgID, clientID string) ([]domain.WeeklyPlan, error) {
	filter := bson.M{
		"organizationId": orgID,
		"clientId":       clientID,
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "startDate", Value: -1}, {Key: "createdAt", Value: -1}})
	return findMany[domain.WeeklyPlan](ctx, r.collection, filter, findOptions)
}

func (r *mongoWeeklyPlanRepository) ExistsWithSession(ctx context.Context, orgID string, sessionID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"organizationId": orgID,
		"days.sessionId": sessionID,
	}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Replace overwrites the stored plan, days included.
func (r *mongoWeeklyPlanRepository) Replace(ctx context.Context, plan *domain.WeeklyPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("weekly plan ID is required for update")
	}
	plan.UpdatedAt = time.Now().UTC()
	return replaceOne(ctx, r.collection, tenantFilter(plan.OrganizationID, plan.ID), plan)
}

func (r *mongoWeeklyPlanRepository) Delete(ctx context.Context, orgID string, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, tenantFilter(orgID, id))
}

// EnsureWeeklyPlanIndexes creates necessary indexes. Call during startup.
func EnsureWeeklyPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// main query pattern: plans of one client
			Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "clientId", Value: 1}, {Key: "startDate", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "isActive", Value: 1}},
		},
		{
			// session deletion checks
			Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "days.sessionId", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
