package mongo

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const formTemplateCollectionName = "form_templates"

type mongoFormTemplateRepository struct {
	collection *mongo.Collection
}

func NewMongoFormTemplateRepository(db *mongo.Database) repository.FormTemplateRepository {
	return &mongoFormTemplateRepository{
		collection: db.Collection(formTemplateCollectionName),
	}
}

func (r *mongoFormTemplateRepository) GetByID(ctx context.Context, orgID, id string) (*domain.FormTemplate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return findOne[domain.FormTemplate](ctx, r.collection, bson.M{"_id": oid, "organizationId": orgID})
}
