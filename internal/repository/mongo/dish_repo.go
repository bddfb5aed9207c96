package mongo

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const dishCollectionName = "dishes"

// mongoDishCatalog reads the dish catalog, which nutrition plans only reference.
type mongoDishCatalog struct {
	collection *mongo.Collection
}

func NewMongoDishCatalog(db *mongo.Database) repository.DishCatalog {
	return &mongoDishCatalog{
		collection: db.Collection(dishCollectionName),
	}
}

func (r *mongoDishCatalog) GetByIDs(ctx context.Context, ids []string) ([]domain.Dish, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []domain.Dish{}, nil
	}
	return findMany[domain.Dish](ctx, r.collection, bson.M{"_id": bson.M{"$in": oids}})
}
