package mongo

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const nutritionPlanCollectionName = "nutrition_plans"

type mongoNutritionPlanRepository struct {
	collection *mongo.Collection
}

func NewMongoNutritionPlanRepository(db *mongo.Database) repository.NutritionPlanRepository {
	return &mongoNutritionPlanRepository{
		collection: db.Collection(nutritionPlanCollectionName),
	}
}

func (r *mongoNutritionPlanRepository) Create(ctx context.Context, plan *domain.NutritionPlan) error {
	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

func (r *mongoNutritionPlanRepository) GetByID(ctx context.Context, orgID string, id primitive.ObjectID) (*domain.NutritionPlan, error) {
	return findOne[domain.NutritionPlan](ctx, r.collection, tenantFilter(orgID, id))
}

func (r *mongoNutritionPlanRepository) ListByClient(ctx context.Context, orgID, clientID string) ([]domain.NutritionPlan, error) {
	filter := bson.M{"organizationId": orgID, "clientId": clientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[domain.NutritionPlan](ctx, r.collection, filter, findOptions)
}

// Replace stores recommendations and selections in a single write.
func (r *mongoNutritionPlanRepository) Replace(ctx context.Context, plan *domain.NutritionPlan) error {
	plan.UpdatedAt = time.Now().UTC()
	return replaceOne(ctx, r.collection, tenantFilter(plan.OrganizationID, plan.ID), plan)
}

func (r *mongoNutritionPlanRepository) Delete(ctx context.Context, orgID string, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, tenantFilter(orgID, id))
}

func EnsureNutritionPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
