package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionTextarea       QuestionType = "textarea"
	QuestionNumber         QuestionType = "number"
	QuestionScale          QuestionType = "scale"
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionYesNo          QuestionType = "yes_no"
)

type Question struct {
	ID       string       `bson:"id" json:"id"`
	Label    string       `bson:"label" json:"label"`
	Type     QuestionType `bson:"type" json:"type"`
	Required bool         `bson:"required" json:"required"`
	Options  []string     `bson:"options,omitempty" json:"options,omitempty"`
	ScaleMin *float64     `bson:"scaleMin,omitempty" json:"scaleMin,omitempty"`
	ScaleMax *float64     `bson:"scaleMax,omitempty" json:"scaleMax,omitempty"`
}

// FormTemplate is an external questionnaire definition, read-only here.
type FormTemplate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organizationId" json:"organizationId"`
	Name           string             `bson:"name" json:"name"`
	Questions      []Question         `bson:"questions" json:"questions"`
}

func (t *FormTemplate) question(id string) (Question, bool) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Answer holds the value given to one question; which field is used depends
// on the question type.
type Answer struct {
	QuestionID string   `bson:"questionId" json:"questionId"`
	Text       string   `bson:"text,omitempty" json:"text,omitempty"`
	Number     *float64 `bson:"number,omitempty" json:"number,omitempty"`
	Choices    []string `bson:"choices,omitempty" json:"choices,omitempty"`
}

// empty applies the required-answer rule: arrays must be non-empty, numbers
// non-zero, text non-blank. Scale answers only need a value, zero included.
func (a Answer) empty(t QuestionType) bool {
	switch t {
	case QuestionScale:
		return a.Number == nil
	case QuestionMultipleChoice:
		return len(a.Choices) == 0
	}
	if a.Number != nil && *a.Number != 0 {
		return false
	}
	if len(a.Choices) > 0 {
		return false
	}
	return strings.TrimSpace(a.Text) == ""
}

type FormStatus string

const (
	FormPending   FormStatus = "pending"
	FormCompleted FormStatus = "completed"
)

// FormKind is derived from whether the response is bound to a weekly plan.
type FormKind string

const (
	FormOnboarding FormKind = "onboarding"
	FormFeedback   FormKind = "feedback"
)

// FormResponse is one questionnaire instance for a client. A nil WeeklyPlanID
// marks an onboarding form; a bound one is plan feedback.
type FormResponse struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID string              `bson:"organizationId" json:"organizationId"`
	TemplateID     string              `bson:"templateId" json:"templateId"`
	WeeklyPlanID   *primitive.ObjectID `bson:"weeklyPlanId" json:"weeklyPlanId"`
	ClientID       string              `bson:"clientId" json:"clientId"`
	Status         FormStatus          `bson:"status" json:"status"`
	Answers        []Answer            `bson:"answers" json:"answers"`
	SubmittedAt    *time.Time          `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// NewFeedbackResponse creates the pending feedback form of a plan that names
// a form template.
func NewFeedbackResponse(plan *WeeklyPlan) (*FormResponse, error) {
	if plan.FormTemplateID == "" {
		return nil, fmt.Errorf("%w: plan %s has no form template", ErrValidation, plan.ID.Hex())
	}
	planID := plan.ID
	return &FormResponse{
		ID:             primitive.NewObjectID(),
		OrganizationID: plan.OrganizationID,
		TemplateID:     plan.FormTemplateID,
		WeeklyPlanID:   &planID,
		ClientID:       plan.ClientID,
		Status:         FormPending,
		Answers:        []Answer{},
	}, nil
}

// NewOnboardingResponse creates a pending form that is not bound to any plan.
func NewOnboardingResponse(organizationID, clientID, templateID string) (*FormResponse, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(templateID) == "" {
		return nil, fmt.Errorf("%w: clientId and templateId are required", ErrValidation)
	}
	return &FormResponse{
		ID:             primitive.NewObjectID(),
		OrganizationID: organizationID,
		TemplateID:     templateID,
		ClientID:       clientID,
		Status:         FormPending,
		Answers:        []Answer{},
	}, nil
}

func (r *FormResponse) Kind() FormKind {
	if r.WeeklyPlanID == nil {
		return FormOnboarding
	}
	return FormFeedback
}

// Submit validates answers against tpl and completes the response. Completed
// responses cannot be submitted again.
func (r *FormResponse) Submit(tpl *FormTemplate, answers []Answer, now time.Time) error {
	if r.Status == FormCompleted {
		return fmt.Errorf("%w: form response %s was already submitted", ErrConflict, r.ID.Hex())
	}
	if tpl == nil || tpl.ID.Hex() != r.TemplateID {
		return fmt.Errorf("%w: form template %s does not match the response", ErrValidation, r.TemplateID)
	}

	byQuestion := make(map[string]Answer, len(answers))
	for _, a := range answers {
		q, ok := tpl.question(a.QuestionID)
		if !ok {
			return fmt.Errorf("%w: unknown question %q", ErrValidation, a.QuestionID)
		}
		if _, dup := byQuestion[a.QuestionID]; dup {
			return fmt.Errorf("%w: question %q answered twice", ErrValidation, a.QuestionID)
		}
		if q.Type == QuestionScale && a.Number != nil {
			if (q.ScaleMin != nil && *a.Number < *q.ScaleMin) || (q.ScaleMax != nil && *a.Number > *q.ScaleMax) {
				return fmt.Errorf("%w: answer to %q is outside the scale", ErrValidation, q.ID)
			}
		}
		byQuestion[a.QuestionID] = a
	}
	for _, q := range tpl.Questions {
		if !q.Required {
			continue
		}
		a, ok := byQuestion[q.ID]
		if !ok || a.empty(q.Type) {
			return fmt.Errorf("%w: question %q requires an answer", ErrValidation, q.ID)
		}
	}

	submitted := now.UTC()
	r.Answers = append([]Answer(nil), answers...)
	r.Status = FormCompleted
	r.SubmittedAt = &submitted
	return nil
}
