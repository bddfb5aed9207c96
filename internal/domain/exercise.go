// internal/domain/exercise.go
package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is an entry of the external exercise catalog. The coaching core
// only reads it to render Session Exercises.
type Exercise struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organizationId,omitempty" json:"organizationId,omitempty"` // empty for the shared library
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	MuscleGroups   []string           `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"` // e.g. "chest", "quadriceps"
	Equipment      []string           `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Difficulty     string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // e.g. "novice", "intermediate", "advanced"
	MediaKey       string             `bson:"mediaKey,omitempty" json:"-"`                      // object key of the demo video/image in the media bucket
}
