package mongo

import (
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Shared CRUD helpers. Owned documents are always addressed by _id together
// with organizationId.

func tenantFilter(orgID string, id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "organizationId": orgID}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func replaceOne(ctx context.Context, coll *mongo.Collection, filter bson.M, doc any) error {
	result, err := coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, filter bson.M) error {
	result, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// objectIDs converts catalog references to ObjectIDs, dropping malformed ones
// since they cannot match any document.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}
