package service

import (
	"alcyxob/coaching-app/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type formFixture struct {
	svc       FormService
	forms     *fakeFormResponseRepo
	plans     *fakeWeeklyPlanRepo
	publisher *recordingPublisher
}

func newFormFixture() *formFixture {
	f := &formFixture{
		forms:     newFakeFormResponseRepo(),
		plans:     newFakeWeeklyPlanRepo(),
		publisher: &recordingPublisher{},
	}
	f.svc = NewFormService(testInfra(f.publisher), f.forms, newFakeTemplateRepo(feedbackTemplate), f.plans)
	return f
}

// planWithFeedback stores a plan ending on end together with its pending
// feedback form.
func (f *formFixture) planWithFeedback(t *testing.T, end int) (*domain.WeeklyPlan, *domain.FormResponse) {
	t.Helper()
	plan, err := domain.NewWeeklyPlan(domain.WeeklyPlanInput{
		OrganizationID: orgID,
		ClientID:       client.UserID,
		Name:           "Week",
		StartDate:      testNow.AddDate(0, 0, end-6),
		EndDate:        testNow.AddDate(0, 0, end),
		FormTemplateID: feedbackTemplate.ID.Hex(),
	})
	require.NoError(t, err)
	form, err := domain.NewFeedbackResponse(plan)
	require.NoError(t, err)
	require.NoError(t, f.plans.Create(context.Background(), plan))
	require.NoError(t, f.forms.Create(context.Background(), form))
	return plan, form
}

func answers(energy float64) []domain.Answer {
	return []domain.Answer{{QuestionID: "energy", Number: &energy}}
}

func TestFormService_CreateOnboarding(t *testing.T) {
	f := newFormFixture()
	ctx := context.Background()

	form, err := f.svc.CreateOnboarding(ctx, coach, client.UserID, feedbackTemplate.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, domain.FormOnboarding, form.Kind())
	assert.Nil(t, form.WeeklyPlanID)

	_, err = f.svc.CreateOnboarding(ctx, coach, client.UserID, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.CreateOnboarding(ctx, client, client.UserID, feedbackTemplate.ID.Hex())
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, 1, f.forms.len())
}

func TestFormService_Submit(t *testing.T) {
	f := newFormFixture()
	ctx := context.Background()
	_, form := f.planWithFeedback(t, 0)

	_, err := f.svc.Submit(ctx, coach, form.ID, answers(7))
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.Submit(ctx, otherUser, form.ID, answers(7))
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.Submit(ctx, client, form.ID, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	done, err := f.svc.Submit(ctx, client, form.ID, answers(0))
	require.NoError(t, err)
	assert.Equal(t, domain.FormCompleted, done.Status)
	require.NotNil(t, done.SubmittedAt)
	assert.Equal(t, testNow, *done.SubmittedAt)

	_, err = f.svc.Submit(ctx, client, form.ID, answers(5))
	assert.ErrorIs(t, err, domain.ErrConflict)

	detail, err := f.svc.GetFormResponse(ctx, coach, form.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FormCompleted, detail.Response.Status)
	assert.Equal(t, feedbackTemplate.Name, detail.Template.Name)

	require.Equal(t, []domain.EventType{domain.EventFormSubmitted}, f.publisher.types())
	assert.Equal(t, form.ID.Hex(), f.publisher.events[0].FormResponseID)
}

func TestFormService_GetPlanFeedback(t *testing.T) {
	f := newFormFixture()
	ctx := context.Background()
	plan, form := f.planWithFeedback(t, 0)

	got, err := f.svc.GetPlanFeedback(ctx, client, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, form.ID, got.ID)

	_, err = f.svc.GetPlanFeedback(ctx, otherUser, plan.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, err = f.svc.GetPlanFeedback(ctx, coach, primitive.NewObjectID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFormService_DueFeedback(t *testing.T) {
	f := newFormFixture()
	ctx := context.Background()

	_, endedToday := f.planWithFeedback(t, 0)
	_, endedLastWeek := f.planWithFeedback(t, -7)
	f.planWithFeedback(t, 3)
	_, submitted := f.planWithFeedback(t, -1)
	_, err := f.svc.Submit(ctx, client, submitted.ID, answers(4))
	require.NoError(t, err)
	orphan, _ := f.planWithFeedback(t, -2)
	require.NoError(t, f.plans.Delete(ctx, orgID, orphan.ID))
	_, err = f.svc.CreateOnboarding(ctx, coach, client.UserID, feedbackTemplate.ID.Hex())
	require.NoError(t, err)

	due, err := f.svc.DueFeedback(ctx, client, client.UserID)
	require.NoError(t, err)

	ids := make([]primitive.ObjectID, 0, len(due))
	for _, form := range due {
		ids = append(ids, form.ID)
	}
	assert.ElementsMatch(t, []primitive.ObjectID{endedToday.ID, endedLastWeek.ID}, ids)

	_, err = f.svc.DueFeedback(ctx, otherUser, client.UserID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestFormService_ListClientResponses(t *testing.T) {
	f := newFormFixture()
	f.planWithFeedback(t, 0)
	f.planWithFeedback(t, 1)

	list, err := f.svc.ListClientResponses(context.Background(), coach, client.UserID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
