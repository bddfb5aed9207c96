package mongo

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const exerciseCollectionName = "exercises"

// mongoExerciseCatalog implements repository.ExerciseCatalog over the
// exercise library collection, which is maintained elsewhere.
type mongoExerciseCatalog struct {
	collection *mongo.Collection
}

// NewMongoExerciseCatalog creates a read-only exercise catalog backed by MongoDB.
func NewMongoExerciseCatalog(db *mongo.Database) repository.ExerciseCatalog {
	return &mongoExerciseCatalog{
		collection: db.Collection(exerciseCollectionName),
	}
}

// visibleTo matches entries of the organization and of the shared library.
func visibleTo(orgID string) bson.A {
	return bson.A{
		bson.M{"organizationId": orgID},
		bson.M{"organizationId": bson.M{"$in": bson.A{nil, ""}}},
	}
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseCatalog) GetByID(ctx context.Context, orgID, id string) (*domain.Exercise, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	filter := bson.M{"_id": oid, "$or": visibleTo(orgID)}
	return findOne[domain.Exercise](ctx, r.collection, filter)
}

func (r *mongoExerciseCatalog) GetByIDs(ctx context.Context, orgID string, ids []string) ([]domain.Exercise, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []domain.Exercise{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": oids}, "$or": visibleTo(orgID)}
	return findMany[domain.Exercise](ctx, r.collection, filter)
}
