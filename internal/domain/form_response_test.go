package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func floatPtr(v float64) *float64 { return &v }

func testTemplate() *FormTemplate {
	return &FormTemplate{
		ID:   primitive.NewObjectID(),
		Name: "Weekly check-in",
		Questions: []Question{
			{ID: "energy", Label: "Energy", Type: QuestionScale, Required: true, ScaleMin: floatPtr(0), ScaleMax: floatPtr(10)},
			{ID: "weight", Label: "Weight", Type: QuestionNumber, Required: true},
			{ID: "pain", Label: "Any pain?", Type: QuestionMultipleChoice, Required: true, Options: []string{"knee", "back", "none"}},
			{ID: "comments", Label: "Comments", Type: QuestionTextarea},
		},
	}
}

func validAnswers() []Answer {
	return []Answer{
		{QuestionID: "energy", Number: floatPtr(0)},
		{QuestionID: "weight", Number: floatPtr(72.5)},
		{QuestionID: "pain", Choices: []string{"none"}},
	}
}

func newPendingFeedback(t *testing.T, tpl *FormTemplate) *FormResponse {
	t.Helper()
	plan := newTestPlan(t, nil)
	plan.FormTemplateID = tpl.ID.Hex()
	r, err := NewFeedbackResponse(plan)
	require.NoError(t, err)
	return r
}

func TestNewFeedbackResponse(t *testing.T) {
	plan := newTestPlan(t, nil)
	_, err := NewFeedbackResponse(plan)
	assert.ErrorIs(t, err, ErrValidation)

	plan.FormTemplateID = "tpl1"
	r, err := NewFeedbackResponse(plan)
	require.NoError(t, err)
	require.NotNil(t, r.WeeklyPlanID)
	assert.Equal(t, plan.ID, *r.WeeklyPlanID)
	assert.Equal(t, FormFeedback, r.Kind())
	assert.Equal(t, FormPending, r.Status)
	assert.Equal(t, plan.ClientID, r.ClientID)
}

func TestNewOnboardingResponse(t *testing.T) {
	r, err := NewOnboardingResponse("org1", "client1", "tpl1")
	require.NoError(t, err)
	assert.Nil(t, r.WeeklyPlanID)
	assert.Equal(t, FormOnboarding, r.Kind())

	_, err = NewOnboardingResponse("org1", "", "tpl1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFormResponse_Submit(t *testing.T) {
	tpl := testTemplate()
	r := newPendingFeedback(t, tpl)
	now := time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)

	require.NoError(t, r.Submit(tpl, validAnswers(), now))
	assert.Equal(t, FormCompleted, r.Status)
	require.NotNil(t, r.SubmittedAt)
	assert.Equal(t, now, *r.SubmittedAt)
	assert.Len(t, r.Answers, 3)

	err := r.Submit(tpl, validAnswers(), now)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFormResponse_SubmitRejects(t *testing.T) {
	tpl := testTemplate()

	tests := []struct {
		name    string
		answers func() []Answer
	}{
		{"missing required", func() []Answer { return validAnswers()[:2] }},
		{"zero number", func() []Answer {
			a := validAnswers()
			a[1].Number = floatPtr(0)
			return a
		}},
		{"empty choices", func() []Answer {
			a := validAnswers()
			a[2].Choices = nil
			return a
		}},
		{"scale out of range", func() []Answer {
			a := validAnswers()
			a[0].Number = floatPtr(11)
			return a
		}},
		{"unknown question", func() []Answer {
			return append(validAnswers(), Answer{QuestionID: "mood", Text: "fine"})
		}},
		{"answered twice", func() []Answer {
			return append(validAnswers(), Answer{QuestionID: "weight", Number: floatPtr(73)})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newPendingFeedback(t, tpl)
			err := r.Submit(tpl, tt.answers(), time.Now())
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, FormPending, r.Status)
			assert.Nil(t, r.SubmittedAt)
		})
	}
}

func TestFormResponse_SubmitWrongTemplate(t *testing.T) {
	tpl := testTemplate()
	r := newPendingFeedback(t, tpl)

	err := r.Submit(testTemplate(), validAnswers(), time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFormResponse_BlankTextIsEmpty(t *testing.T) {
	tpl := testTemplate()
	tpl.Questions[3].Required = true
	r := newPendingFeedback(t, tpl)

	answers := append(validAnswers(), Answer{QuestionID: "comments", Text: "   "})
	assert.ErrorIs(t, r.Submit(tpl, answers, time.Now()), ErrValidation)

	answers[3].Text = "all good"
	assert.NoError(t, r.Submit(tpl, answers, time.Now()))
}

func TestFormSubmittedEvent(t *testing.T) {
	tpl := testTemplate()
	r := newPendingFeedback(t, tpl)
	require.NoError(t, r.Submit(tpl, validAnswers(), time.Now()))

	ev := FormSubmitted(r, time.Now())
	assert.Equal(t, EventFormSubmitted, ev.Type)
	assert.Equal(t, r.WeeklyPlanID.Hex(), ev.PlanID)
	assert.Equal(t, r.ID.Hex(), ev.FormResponseID)

	onboarding, err := NewOnboardingResponse("org1", "client1", "tpl1")
	require.NoError(t, err)
	assert.Empty(t, FormSubmitted(onboarding, time.Now()).PlanID)
}
