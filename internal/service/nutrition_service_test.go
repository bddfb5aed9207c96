package service

import (
	"alcyxob/coaching-app/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	oats = domain.Dish{
		ID:              primitive.NewObjectID(),
		Name:            "Overnight oats",
		NutritionalInfo: domain.Nutrients{Calories: 400, Protein: 20, Carbohydrate: 60, Fat: 8},
		ImageKey:        "dishes/oats.jpg",
	}
	salad = domain.Dish{
		ID:              primitive.NewObjectID(),
		Name:            "Chicken salad",
		NutritionalInfo: domain.Nutrients{Calories: 550, Protein: 45, Carbohydrate: 20, Fat: 25},
	}
)

type nutritionFixture struct {
	svc       NutritionService
	plans     *fakeNutritionPlanRepo
	publisher *recordingPublisher
}

func newNutritionFixture() *nutritionFixture {
	f := &nutritionFixture{plans: newFakeNutritionPlanRepo(), publisher: &recordingPublisher{}}
	f.svc = NewNutritionService(testInfra(f.publisher), f.plans, newFakeDishCatalog(oats, salad), fakeMedia{})
	return f
}

func (f *nutritionFixture) create(t *testing.T) *domain.NutritionPlan {
	t.Helper()
	plan, err := f.svc.CreateNutritionPlan(context.Background(), coach, domain.NutritionPlanInput{
		ClientID:   client.UserID,
		Name:       "Cut",
		TotalWeeks: 4,
		IsActive:   true,
		Targets:    domain.NutritionTargets{Calories: 2000, Protein: 150},
	})
	require.NoError(t, err)
	return plan
}

func entryOf(d domain.Dish, meal domain.MealType, week, day int) domain.DishEntry {
	return domain.DishEntry{DishID: d.ID.Hex(), MealType: meal, WeekNumber: week, DayOfWeek: day}
}

func TestNutritionService_CreateNutritionPlan(t *testing.T) {
	f := newNutritionFixture()
	plan := f.create(t)

	assert.Equal(t, orgID, plan.OrganizationID)
	assert.Equal(t, []domain.EventType{domain.EventNutritionPlanCreated}, f.publisher.types())

	_, err := f.svc.CreateNutritionPlan(context.Background(), client, domain.NutritionPlanInput{ClientID: "x", Name: "y", TotalWeeks: 1})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.CreateNutritionPlan(context.Background(), coach, domain.NutritionPlanInput{ClientID: "x", Name: "y", TotalWeeks: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, f.plans.len())
}

func TestNutritionService_RecommendIsCoachOnly(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	plan := f.create(t)

	_, err := f.svc.Recommend(ctx, client, plan.ID, entryOf(oats, domain.MealBreakfast, 1, 1))
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.Recommend(ctx, coach, plan.ID, entryOf(oats, domain.MealBreakfast, 5, 1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	for i := 0; i < 2; i++ {
		_, err = f.svc.Recommend(ctx, coach, plan.ID, entryOf(oats, domain.MealBreakfast, 1, 1))
		require.NoError(t, err)
	}
	updated, err := f.svc.Unrecommend(ctx, coach, plan.ID, 0)
	require.NoError(t, err)
	assert.Len(t, updated.RecommendedDishes, 1)

	_, err = f.svc.Unrecommend(ctx, coach, plan.ID, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNutritionService_SelectIsClientOnly(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	plan := f.create(t)
	e := entryOf(salad, domain.MealLunch, 2, 3)

	_, _, err := f.svc.Select(ctx, coach, plan.ID, e)
	assert.ErrorIs(t, err, ErrAccessDenied)
	_, _, err = f.svc.Select(ctx, otherUser, plan.ID, e)
	assert.ErrorIs(t, err, ErrAccessDenied)

	updated, selected, err := f.svc.Select(ctx, client, plan.ID, e)
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, []domain.DishEntry{e}, updated.ClientSelections)
	assert.Empty(t, updated.RecommendedDishes)

	updated, selected, err = f.svc.Select(ctx, client, plan.ID, e)
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Empty(t, updated.ClientSelections)

	_, err = f.svc.Deselect(ctx, client, plan.ID, e)
	require.NoError(t, err)
}

func TestNutritionService_CopyWeekAndSetTotalWeeks(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	plan := f.create(t)

	_, err := f.svc.Recommend(ctx, coach, plan.ID, entryOf(oats, domain.MealBreakfast, 1, 1))
	require.NoError(t, err)
	_, err = f.svc.Recommend(ctx, coach, plan.ID, entryOf(salad, domain.MealLunch, 4, 2))
	require.NoError(t, err)

	updated, err := f.svc.CopyWeek(ctx, coach, plan.ID, 1, 4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.DishEntry{
		entryOf(oats, domain.MealBreakfast, 1, 1),
		entryOf(oats, domain.MealBreakfast, 4, 1),
	}, updated.RecommendedDishes)

	updated, err = f.svc.SetTotalWeeks(ctx, coach, plan.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.TotalWeeks)
	assert.Equal(t, []domain.DishEntry{entryOf(oats, domain.MealBreakfast, 1, 1)}, updated.RecommendedDishes)

	_, err = f.svc.CopyWeek(ctx, coach, plan.ID, 1, 3)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNutritionService_UpdateTargets(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	plan := f.create(t)

	updated, err := f.svc.UpdateTargets(ctx, coach, plan.ID, domain.NutritionTargets{Calories: 1800}, "lower carbs")
	require.NoError(t, err)
	assert.Equal(t, 1800.0, updated.Targets.Calories)
	assert.Equal(t, "lower carbs", updated.Notes)

	_, err = f.svc.UpdateTargets(ctx, coach, plan.ID, domain.NutritionTargets{Fat: -1}, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNutritionService_GetDay(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	plan := f.create(t)
	missing := domain.Dish{ID: primitive.NewObjectID()}

	for _, e := range []domain.DishEntry{
		entryOf(oats, domain.MealBreakfast, 1, 2),
		entryOf(salad, domain.MealLunch, 1, 2),
		entryOf(salad, domain.MealDinner, 1, 3),
	} {
		_, err := f.svc.Recommend(ctx, coach, plan.ID, e)
		require.NoError(t, err)
	}
	for _, e := range []domain.DishEntry{
		entryOf(oats, domain.MealBreakfast, 1, 2),
		entryOf(oats, domain.MealSnack, 1, 2),
		entryOf(missing, domain.MealDinner, 1, 2),
	} {
		_, _, err := f.svc.Select(ctx, client, plan.ID, e)
		require.NoError(t, err)
	}

	day, err := f.svc.GetDay(ctx, client, plan.ID, 1, 2)
	require.NoError(t, err)

	assert.Len(t, day.Recommended, 2)
	assert.Len(t, day.Selected[domain.MealBreakfast], 1)
	assert.Len(t, day.Selected[domain.MealSnack], 1)
	assert.Len(t, day.Dishes, 2)
	assert.Equal(t, "https://media.test/dishes/oats.jpg?sig=1", day.Dishes[oats.ID.Hex()].ImageURL)
	assert.Empty(t, day.Dishes[salad.ID.Hex()].ImageURL)

	assert.Equal(t, domain.Nutrients{Calories: 950, Protein: 65, Carbohydrate: 80, Fat: 33}, day.RecommendedTotals)
	assert.Equal(t, domain.Nutrients{Calories: 800, Protein: 40, Carbohydrate: 120, Fat: 16}, day.SelectedTotals)

	assert.Equal(t, 0.4, day.Adherence.Calories.Ratio)
	assert.Equal(t, domain.AdherenceUnder, day.Adherence.Calories.Status)
	assert.Equal(t, domain.AdherenceNoTarget, day.Adherence.Fat.Status)

	_, err = f.svc.GetDay(ctx, client, plan.ID, 9, 2)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.svc.GetDay(ctx, otherUser, plan.ID, 1, 2)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestNutritionService_DeletePlan(t *testing.T) {
	f := newNutritionFixture()
	ctx := context.Background()
	plan := f.create(t)

	assert.ErrorIs(t, f.svc.DeletePlan(ctx, client, plan.ID), ErrAccessDenied)
	require.NoError(t, f.svc.DeletePlan(ctx, coach, plan.ID))
	assert.ErrorIs(t, f.svc.DeletePlan(ctx, coach, plan.ID), domain.ErrNotFound)
}
