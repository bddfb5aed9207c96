package repository

import (
	"alcyxob/coaching-app/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound = RepositoryError("not found")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Every lookup below is scoped to an organization: a document of another
// tenant behaves exactly like a missing one and yields ErrNotFound.

// SessionRepository stores coach-authored Sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, orgID string, id primitive.ObjectID) (*domain.Session, error)
	GetByIDs(ctx context.Context, orgID string, ids []primitive.ObjectID) ([]domain.Session, error)
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Session, error)
	// Replace overwrites the whole document; the last write wins.
	Replace(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, orgID string, id primitive.ObjectID) error
}

// WeeklyPlanRepository stores Weekly Plans.
type WeeklyPlanRepository interface {
	Create(ctx context.Context, plan *domain.WeeklyPlan) error
	GetByID(ctx context.Context, orgID string, id primitive.ObjectID) (*domain.WeeklyPlan, error)
	ListByClient(ctx context.Context, orgID, clientID string) ([]domain.WeeklyPlan, error)
	// ExistsWithSession reports whether any plan of the organization still
	// schedules sessionID on one of its days.
	ExistsWithSession(ctx context.Context, orgID string, sessionID primitive.ObjectID) (bool, error)
	Replace(ctx context.Context, plan *domain.WeeklyPlan) error
	Delete(ctx context.Context, orgID string, id primitive.ObjectID) error
}

// NutritionPlanRepository stores Nutrition Plans with both their
// recommendation and selection collections.
type NutritionPlanRepository interface {
	Create(ctx context.Context, plan *domain.NutritionPlan) error
	GetByID(ctx context.Context, orgID string, id primitive.ObjectID) (*domain.NutritionPlan, error)
	ListByClient(ctx context.Context, orgID, clientID string) ([]domain.NutritionPlan, error)
	Replace(ctx context.Context, plan *domain.NutritionPlan) error
	Delete(ctx context.Context, orgID string, id primitive.ObjectID) error
}

// FormResponseRepository stores questionnaire instances.
type FormResponseRepository interface {
	Create(ctx context.Context, response *domain.FormResponse) error
	GetByID(ctx context.Context, orgID string, id primitive.ObjectID) (*domain.FormResponse, error)
	GetByWeeklyPlan(ctx context.Context, orgID string, planID primitive.ObjectID) (*domain.FormResponse, error)
	ListByClient(ctx context.Context, orgID, clientID string) ([]domain.FormResponse, error)
	Replace(ctx context.Context, response *domain.FormResponse) error
	// DeletePendingByWeeklyPlan removes the unanswered feedback form of a
	// plan. Completed responses are kept.
	DeletePendingByWeeklyPlan(ctx context.Context, orgID string, planID primitive.ObjectID) error
}

// ExerciseCatalog is the read-only view of the external exercise library.
// Organization-specific entries and the shared library (no organization) are
// both visible.
type ExerciseCatalog interface {
	GetByID(ctx context.Context, orgID, id string) (*domain.Exercise, error)
	// GetByIDs returns the entries that exist; unknown ids are left out.
	GetByIDs(ctx context.Context, orgID string, ids []string) ([]domain.Exercise, error)
}

// DishCatalog is the read-only view of the external dish catalog.
type DishCatalog interface {
	// GetByIDs returns the dishes that exist; unknown ids are left out.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Dish, error)
}

// FormTemplateRepository reads questionnaire definitions.
type FormTemplateRepository interface {
	GetByID(ctx context.Context, orgID, id string) (*domain.FormTemplate, error)
}
