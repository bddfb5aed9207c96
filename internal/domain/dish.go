package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ingredient is one line of a dish recipe.
type Ingredient struct {
	Name   string `bson:"name" json:"name"`
	Amount string `bson:"amount,omitempty" json:"amount,omitempty"`
}

// Dish is an entry of the external dish catalog, referenced by nutrition plans
// and never owned by them.
type Dish struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID  string             `bson:"organizationId,omitempty" json:"organizationId,omitempty"`
	Name            string             `bson:"name" json:"name"`
	MealCategory    string             `bson:"mealCategory,omitempty" json:"mealCategory,omitempty"`
	Ingredients     []Ingredient       `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Preparation     string             `bson:"preparation,omitempty" json:"preparation,omitempty"`
	NutritionalInfo Nutrients          `bson:"nutritionalInfo" json:"nutritionalInfo"`
	ImageKey        string             `bson:"imageKey,omitempty" json:"imageKey,omitempty"`
}
