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

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a session. The session must satisfy all of its invariants.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, session)
	return err
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, orgID string, id primitive.ObjectID) (*domain.Session, error) {
	return findOne[domain.Session](ctx, r.collection, tenantFilter(orgID, id))
}

func (r *mongoSessionRepository) GetByIDs(ctx context.Context, orgID string, ids []primitive.ObjectID) ([]domain.Session, error) {
	if len(ids) == 0 {
		return []domain.Session{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}, "organizationId": orgID}
	return findMany[domain.Session](ctx, r.collection, filter)
}

// ListByOrganization returns the sessions of an organization, newest first.
func (r *mongoSessionRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.Session, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[domain.Session](ctx, r.collection, bson.M{"organizationId": orgID}, findOptions)
}

// Replace overwrites the stored session. An invalid session is never saved.
func (r *mongoSessionRepository) Replace(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	session.UpdatedAt = time.Now().UTC()
	return replaceOne(ctx, r.collection, tenantFilter(session.OrganizationID, session.ID), session)
}

func (r *mongoSessionRepository) Delete(ctx context.Context, orgID string, id primitive.ObjectID) error {
	return deleteOne(ctx, r.collection, tenantFilter(orgID, id))
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "coachId", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
