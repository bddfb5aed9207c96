package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType names a domain event the core signals to the outside world.
type EventType string

const (
	EventWeeklyPlanCreated    EventType = "weekly_plan.created"
	EventNutritionPlanCreated EventType = "nutrition_plan.created"
	EventDayCompleted         EventType = "weekly_plan.day_completed"
	EventFormSubmitted        EventType = "form_response.submitted"
)

// Event is delivered by an external notification system; the core only
// describes what happened.
type Event struct {
	Type           EventType `json:"type"`
	OrganizationID string    `json:"organizationId"`
	ClientID       string    `json:"clientId"`
	PlanID         string    `json:"planId,omitempty"`
	DayOfWeek      *int      `json:"dayOfWeek,omitempty"`
	FormResponseID string    `json:"formResponseId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func WeeklyPlanCreated(p *WeeklyPlan, at time.Time) Event {
	return Event{
		Type:           EventWeeklyPlanCreated,
		OrganizationID: p.OrganizationID,
		ClientID:       p.ClientID,
		PlanID:         p.ID.Hex(),
		OccurredAt:     at.UTC(),
	}
}

func NutritionPlanCreated(p *NutritionPlan, at time.Time) Event {
	return Event{
		Type:           EventNutritionPlanCreated,
		OrganizationID: p.OrganizationID,
		ClientID:       p.ClientID,
		PlanID:         p.ID.Hex(),
		OccurredAt:     at.UTC(),
	}
}

func DayCompleted(p *WeeklyPlan, day int, at time.Time) Event {
	return Event{
		Type:           EventDayCompleted,
		OrganizationID: p.OrganizationID,
		ClientID:       p.ClientID,
		PlanID:         p.ID.Hex(),
		DayOfWeek:      &day,
		OccurredAt:     at.UTC(),
	}
}

func FormSubmitted(r *FormResponse, at time.Time) Event {
	var planID string
	if r.WeeklyPlanID != nil && *r.WeeklyPlanID != primitive.NilObjectID {
		planID = r.WeeklyPlanID.Hex()
	}
	return Event{
		Type:           EventFormSubmitted,
		OrganizationID: r.OrganizationID,
		ClientID:       r.ClientID,
		PlanID:         planID,
		FormResponseID: r.ID.Hex(),
		OccurredAt:     at.UTC(),
	}
}
