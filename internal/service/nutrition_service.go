package service

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"alcyxob/coaching-app/internal/storage"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DishView is a catalog dish with a link to its image.
type DishView struct {
	domain.Dish
	ImageURL string `json:"imageUrl,omitempty"`
}

// NutritionDay is everything a client or coach sees for one plan day.
type NutritionDay struct {
	PlanID            primitive.ObjectID
	WeekNumber        int
	DayOfWeek         int
	Recommended       map[domain.MealType][]domain.DishEntry
	Selected          map[domain.MealType][]domain.DishEntry
	Dishes            map[string]DishView
	RecommendedTotals domain.Nutrients
	SelectedTotals    domain.Nutrients
	Adherence         domain.DayAdherence // selected totals against the plan targets
}

type NutritionService interface {
	CreateNutritionPlan(ctx context.Context, caller domain.Caller, in domain.NutritionPlanInput) (*domain.NutritionPlan, error)
	GetNutritionPlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.NutritionPlan, error)
	ListClientPlans(ctx context.Context, caller domain.Caller, clientID string) ([]domain.NutritionPlan, error)
	Recommend(ctx context.Context, caller domain.Caller, id primitive.ObjectID, entry domain.DishEntry) (*domain.NutritionPlan, error)
	Unrecommend(ctx context.Context, caller domain.Caller, id primitive.ObjectID, index int) (*domain.NutritionPlan, error)
	Select(ctx context.Context, caller domain.Caller, id primitive.ObjectID, entry domain.DishEntry) (*domain.NutritionPlan, bool, error)
	Deselect(ctx context.Context, caller domain.Caller, id primitive.ObjectID, entry domain.DishEntry) (*domain.NutritionPlan, error)
	CopyWeek(ctx context.Context, caller domain.Caller, id primitive.ObjectID, sourceWeek, targetWeek int) (*domain.NutritionPlan, error)
	SetTotalWeeks(ctx context.Context, caller domain.Caller, id primitive.ObjectID, totalWeeks int) (*domain.NutritionPlan, error)
	UpdateTargets(ctx context.Context, caller domain.Caller, id primitive.ObjectID, targets domain.NutritionTargets, notes string) (*domain.NutritionPlan, error)
	GetDay(ctx context.Context, caller domain.Caller, id primitive.ObjectID, week, day int) (*NutritionDay, error)
	DeletePlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID) error
}

type nutritionService struct {
	Infra
	plans  repository.NutritionPlanRepository
	dishes repository.DishCatalog
	media  storage.MediaStorage // optional
}

func NewNutritionService(infra Infra, plans repository.NutritionPlanRepository, dishes repository.DishCatalog, media storage.MediaStorage) NutritionService {
	return &nutritionService{
		Infra:  infra,
		plans:  plans,
		dishes: dishes,
		media:  media,
	}
}

func (s *nutritionService) CreateNutritionPlan(ctx context.Context, caller domain.Caller, in domain.NutritionPlanInput) (_ *domain.NutritionPlan, err error) {
	defer func() { s.finish("create_nutrition_plan", err, zap.String("clientId", in.ClientID)) }()

	if err = requireCoach(caller); err != nil {
		return nil, err
	}
	in.OrganizationID = caller.OrganizationID
	in.CoachID = caller.UserID

	plan, err := domain.NewNutritionPlan(in)
	if err != nil {
		return nil, err
	}
	if err = s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.NutritionPlanCreated(plan, s.now()))
	return plan, nil
}

func (s *nutritionService) load(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.NutritionPlan, error) {
	plan, err := s.plans.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, notFound(err, "nutrition plan", id.Hex())
	}
	if err := requireClientAccess(caller, plan.ClientID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *nutritionService) GetNutritionPlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.NutritionPlan, error) {
	return s.load(ctx, caller, id)
}

func (s *nutritionService) ListClientPlans(ctx context.Context, caller domain.Caller, clientID string) ([]domain.NutritionPlan, error) {
	if err := requireClientAccess(caller, clientID); err != nil {
		return nil, err
	}
	return s.plans.ListByClient(ctx, caller.OrganizationID, clientID)
}

// access decides who may run a mutation after the plan is loaded.
type access int

const (
	coachAccess access = iota
	ownerAccess        // the plan's client only
)

func (s *nutritionService) mutate(ctx context.Context, op string, caller domain.Caller, id primitive.ObjectID, who access, fn func(*domain.NutritionPlan) error) (_ *domain.NutritionPlan, err error) {
	defer func() { s.finish(op, err, zap.String("planId", id.Hex())) }()

	if who == coachAccess {
		if err = requireCoach(caller); err != nil {
			return nil, err
		}
	}
	plan, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if who == ownerAccess && !(caller.IsClient() && caller.UserID == plan.ClientID) {
		return nil, ErrAccessDenied
	}
	if err = fn(plan); err != nil {
		return nil, err
	}
	if err = s.plans.Replace(ctx, plan); err != nil {
		return nil, notFound(err, "nutrition plan", id.Hex())
	}
	return plan, nil
}

func (s *nutritionService) Recommend(ctx context.Context, caller domain.Caller, id primitive.ObjectID, entry domain.DishEntry) (*domain.NutritionPlan, error) {
	return s.mutate(ctx, "recommend_dish", caller, id, coachAccess, func(plan *domain.NutritionPlan) error {
		_, err := plan.Recommend(entry)
		return err
	})
}

func (s *nutritionService) Unrecommend(ctx context.Context, caller domain.Caller, id primitive.ObjectID, index int) (*domain.NutritionPlan, error) {
	return s.mutate(ctx, "unrecommend_dish", caller, id, coachAccess, func(plan *domain.NutritionPlan) error {
		return plan.Unrecommend(index)
	})
}

// Select toggles a client selection and reports whether the dish is selected
// afterwards.
func (s *nutritionService) Select(ctx context.Context, caller domain.Caller, id primitive.ObjectID, entry domain.DishEntry) (*domain.NutritionPlan, bool, error) {
	var selected bool
	plan, err := s.mutate(ctx, "select_dish", caller, id, ownerAccess, func(plan *domain.NutritionPlan) error {
		var err error
		selected, err = plan.Select(entry)
		return err
	})
	return plan, selected, err
}

func (s *nutritionService) Deselect(ctx context.Context, caller domain.Caller, id primitive.ObjectID, entry domain.DishEntry) (*domain.NutritionPlan, error) {
	return s.mutate(ctx, "deselect_dish", caller, id, ownerAccess, func(plan *domain.NutritionPlan) error {
		return plan.Deselect(entry)
	})
}

func (s *nutritionService) CopyWeek(ctx context.Context, caller domain.Caller, id primitive.ObjectID, sourceWeek, targetWeek int) (*domain.NutritionPlan, error) {
	return s.mutate(ctx, "copy_week", caller, id, coachAccess, func(plan *domain.NutritionPlan) error {
		return plan.CopyWeek(sourceWeek, targetWeek)
	})
}

func (s *nutritionService) SetTotalWeeks(ctx context.Context, caller domain.Caller, id primitive.ObjectID, totalWeeks int) (*domain.NutritionPlan, error) {
	return s.mutate(ctx, "set_total_weeks", caller, id, coachAccess, func(plan *domain.NutritionPlan) error {
		return plan.SetTotalWeeks(totalWeeks)
	})
}

func (s *nutritionService) UpdateTargets(ctx context.Context, caller domain.Caller, id primitive.ObjectID, targets domain.NutritionTargets, notes string) (*domain.NutritionPlan, error) {
	return s.mutate(ctx, "update_nutrition_targets", caller, id, coachAccess, func(plan *domain.NutritionPlan) error {
		return plan.UpdateTargets(targets, notes)
	})
}

// GetDay builds the day view: entries grouped by meal, the dishes they
// reference and the nutrient totals of both collections.
func (s *nutritionService) GetDay(ctx context.Context, caller domain.Caller, id primitive.ObjectID, week, day int) (*NutritionDay, error) {
	plan, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := plan.CheckDay(week, day); err != nil {
		return nil, err
	}

	dishes, err := s.dishes.GetByIDs(ctx, plan.DishIDs(week, day))
	if err != nil {
		return nil, err
	}
	index := domain.NewDishIndex(dishes)

	view := &NutritionDay{
		PlanID:            plan.ID,
		WeekNumber:        week,
		DayOfWeek:         day,
		Recommended:       domain.GroupByMeal(plan.RecommendedOn(week, day)),
		Selected:          domain.GroupByMeal(plan.SelectedOn(week, day)),
		Dishes:            make(map[string]DishView, len(dishes)),
		RecommendedTotals: domain.DayTotals(index, plan.RecommendedDishes, week, day),
		SelectedTotals:    domain.DayTotals(index, plan.ClientSelections, week, day),
	}
	view.Adherence = domain.CompareToTargets(view.SelectedTotals, plan.Targets)

	for _, d := range dishes {
		dv := DishView{Dish: d}
		if d.ImageKey != "" && s.media != nil {
			url, err := s.media.PresignedDownloadURL(ctx, d.ImageKey)
			if err != nil {
				s.Logger.Warn("cannot presign dish image", zap.String("dishId", d.ID.Hex()), zap.Error(err))
			} else {
				dv.ImageURL = url
			}
		}
		view.Dishes[d.ID.Hex()] = dv
	}
	return view, nil
}

func (s *nutritionService) DeletePlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (err error) {
	defer func() { s.finish("delete_nutrition_plan", err, zap.String("planId", id.Hex())) }()

	if err = requireCoach(caller); err != nil {
		return err
	}
	return notFound(s.plans.Delete(ctx, caller.OrganizationID, id), "nutrition plan", id.Hex())
}
