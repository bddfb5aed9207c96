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

const formResponseCollectionName = "form_responses"

type mongoFormResponseRepository struct {
	collection *mongo.Collection
}

func NewMongoFormResponseRepository(db *mongo.Database) repository.FormResponseRepository {
	return &mongoFormResponseRepository{
		collection: db.Collection(formResponseCollectionName),
	}
}

// Create inserts a response. Onboarding responses are stored with an explicit
// null weeklyPlanId.
func (r *mongoFormResponseRepository) Create(ctx context.Context, response *domain.FormResponse) error {
	if response.ID.IsZero() {
		response.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	response.CreatedAt = now
	response.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, response)
	return err
}

func (r *mongoFormResponseRepository) GetByID(ctx context.Context, orgID string, id primitive.ObjectID) (*domain.FormResponse, error) {
	return findOne[domain.FormResponse](ctx, r.collection, tenantFilter(orgID, id))
}

func (r *mongoFormResponseRepository) GetByWeeklyPlan(ctx context.Context, orgID string, planID primitive.ObjectID) (*domain.FormResponse, error) {
	return findOne[domain.FormResponse](ctx, r.collection, bson.M{"organizationId": orgID, "weeklyPlanId": planID})
}

// ListByClient returns every response of a client, newest first.
func (r *mongoFormResponseRepository) ListByClient(ctx context.Context, orgID, clientID string) ([]domain.FormResponse, error) {
	filter := bson.M{"organizationId": orgID, "clientId": clientID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[domain.FormResponse](ctx, r.collection, filter, findOptions)
}

func (r *mongoFormResponseRepository) Replace(ctx context.Context, response *domain.FormResponse) error {
	response.UpdatedAt = time.Now().UTC()
	return replaceOne(ctx, r.collection, tenantFilter(response.OrganizationID, response.ID), response)
}

func (r *mongoFormResponseRepository) DeletePendingByWeeklyPlan(ctx context.Context, orgID string, planID primitive.ObjectID) error {
	filter := bson.M{
		"organizationId": orgID,
		"weeklyPlanId":   planID,
		"status":         domain.FormPending,
	}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

func EnsureFormResponseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			// at most one form per plan; onboarding forms carry a null plan
			Keys: bson.D{{Key: "weeklyPlanId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"weeklyPlanId": bson.M{"$type": "objectId"}},
			),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
