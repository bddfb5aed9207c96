package service

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PlanDay is one scheduled day together with the Session it points to.
type PlanDay struct {
	DayOfWeek int
	Day       *domain.DaySession
	Session   *domain.Session // nil when the session no longer exists
}

type WeeklyPlanService interface {
	CreateWeeklyPlan(ctx context.Context, caller domain.Caller, in domain.WeeklyPlanInput) (*domain.WeeklyPlan, error)
	GetWeeklyPlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.WeeklyPlan, error)
	GetPlanDay(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int) (*PlanDay, error)
	ListClientPlans(ctx context.Context, caller domain.Caller, clientID string) ([]domain.WeeklyPlan, error)
	AssignDay(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int, sessionID primitive.ObjectID, notes string) (*domain.WeeklyPlan, error)
	RemoveDay(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int) (*domain.WeeklyPlan, error)
	UpdateDayNotes(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int, notes string) (*domain.WeeklyPlan, error)
	SetActive(ctx context.Context, caller domain.Caller, id primitive.ObjectID, active bool) (*domain.WeeklyPlan, error)
	MarkDayCompleted(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int, completed bool) (*domain.WeeklyPlan, error)
	MarkExerciseCompleted(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int, sessionExerciseID string, completed bool) (*domain.WeeklyPlan, error)
	DuplicatePlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID, targetClientID string) (*domain.WeeklyPlan, error)
	DeletePlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID) error
}

type weeklyPlanService struct {
	Infra
	plans     repository.WeeklyPlanRepository
	sessions  repository.SessionRepository
	forms     repository.FormResponseRepository
	templates repository.FormTemplateRepository
}

func NewWeeklyPlanService(
	infra Infra,
	plans repository.WeeklyPlanRepository,
	sessions repository.SessionRepository,
	forms repository.FormResponseRepository,
	templates repository.FormTemplateRepository,
) WeeklyPlanService {
	return &weeklyPlanService{
		Infra:     infra,
		plans:     plans,
		sessions:  sessions,
		forms:     forms,
		templates: templates,
	}
}

// checkSessions fails with NotFound when a referenced session does not exist
// in the organization.
func (s *weeklyPlanService) checkSessions(ctx context.Context, orgID string, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.sessions.GetByIDs(ctx, orgID, ids)
	if err != nil {
		return err
	}
	known := make(map[primitive.ObjectID]bool, len(found))
	for _, session := range found {
		known[session.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: session %s", domain.ErrNotFound, id.Hex())
		}
	}
	return nil
}

// persistNew stores a new plan and, when it names a form template, its
// pending feedback form. Both events of plan creation are emitted afterwards.
func (s *weeklyPlanService) persistNew(ctx context.Context, plan *domain.WeeklyPlan) error {
	var form *domain.FormResponse
	if plan.FormTemplateID != "" {
		if _, err := s.templates.GetByID(ctx, plan.OrganizationID, plan.FormTemplateID); err != nil {
			return notFound(err, "form template", plan.FormTemplateID)
		}
		var err error
		if form, err = domain.NewFeedbackResponse(plan); err != nil {
			return err
		}
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return err
	}
	if form != nil {
		if err := s.forms.Create(ctx, form); err != nil {
			// a plan is never stored without its feedback form
			if delErr := s.plans.Delete(ctx, plan.OrganizationID, plan.ID); delErr != nil {
				s.Logger.Error("failed to roll back weekly plan after form insert failure",
					zap.String("planId", plan.ID.Hex()),
					zap.Error(delErr),
				)
			}
			return fmt.Errorf("create feedback form: %w", err)
		}
	}
	s.publish(ctx, domain.WeeklyPlanCreated(plan, s.now()))
	return nil
}

func (s *weeklyPlanService) CreateWeeklyPlan(ctx context.Context, caller domain.Caller, in domain.WeeklyPlanInput) (_ *domain.WeeklyPlan, err error) {
	defer func() { s.finish("create_weekly_plan", err, zap.String("clientId", in.ClientID)) }()

	if err = requireCoach(caller); err != nil {
		return nil, err
	}
	in.OrganizationID = caller.OrganizationID
	in.CoachID = caller.UserID

	plan, err := domain.NewWeeklyPlan(in)
	if err != nil {
		return nil, err
	}
	if err = s.checkSessions(ctx, plan.OrganizationID, plan.SessionIDs()); err != nil {
		return nil, err
	}
	if err = s.persistNew(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// load fetches a plan the caller may see.
func (s *weeklyPlanService) load(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.WeeklyPlan, error) {
	plan, err := s.plans.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, notFound(err, "weekly plan", id.Hex())
	}
	if err := requireClientAccess(caller, plan.ClientID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *weeklyPlanService) GetWeeklyPlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.WeeklyPlan, error) {
	return s.load(ctx, caller, id)
}

func (s *weeklyPlanService) GetPlanDay(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int) (*PlanDay, error) {
	plan, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	slot, err := plan.Day(day)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.GetByID(ctx, caller.OrganizationID, slot.SessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return &PlanDay{DayOfWeek: day, Day: slot, Session: session}, nil
}

func (s *weeklyPlanService) ListClientPlans(ctx context.Context, caller domain.Caller, clientID string) ([]domain.WeeklyPlan, error) {
	if err := requireClientAccess(caller, clientID); err != nil {
		return nil, err
	}
	return s.plans.ListByClient(ctx, caller.OrganizationID, clientID)
}

// mutate loads a plan, applies fn and saves the whole document. Nothing is
// saved when fn fails.
func (s *weeklyPlanService) mutate(ctx context.Context, op string, caller domain.Caller, id primitive.ObjectID, coachOnly bool, fn func(*domain.WeeklyPlan) error) (_ *domain.WeeklyPlan, err error) {
	defer func() { s.finish(op, err, zap.String("planId", id.Hex())) }()

	if coachOnly {
		if err = requireCoach(caller); err != nil {
			return nil, err
		}
	}
	plan, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err = fn(plan); err != nil {
		return nil, err
	}
	if err = s.plans.Replace(ctx, plan); err != nil {
		return nil, notFound(err, "weekly plan", id.Hex())
	}
	return plan, nil
}

// AssignDay applies the slot rules before checking that the session exists,
// so day, capacity and conflict errors take precedence.
func (s *weeklyPlanService) AssignDay(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int, sessionID primitive.ObjectID, notes string) (*domain.WeeklyPlan, error) {
	return s.mutate(ctx, "assign_day", caller, id, true, func(plan *domain.WeeklyPlan) error {
		if err := plan.AssignDay(day, sessionID, notes); err != nil {
			return err
		}
		return s.checkSessions(ctx, caller.OrganizationID, []primitive.ObjectID{sessionID})
	})
}

func (s *weeklyPlanService) RemoveDay(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int) (*domain.WeeklyPlan, error) {
	return s.mutate(ctx, "remove_day", caller, id, true, func(plan *domain.WeeklyPlan) error {
		return plan.RemoveDay(day)
	})
}

func (s *weeklyPlanService) UpdateDayNotes(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int, notes string) (*domain.WeeklyPlan, error) {
	return s.mutate(ctx, "update_day_notes", caller, id, true, func(plan *domain.WeeklyPlan) error {
		return plan.UpdateDayNotes(day, notes)
	})
}

func (s *weeklyPlanService) SetActive(ctx context.Context, caller domain.Caller, id primitive.ObjectID, active bool) (*domain.WeeklyPlan, error) {
	return s.mutate(ctx, "set_plan_active", caller, id, true, func(plan *domain.WeeklyPlan) error {
		plan.IsActive = active
		return nil
	})
}

func (s *weeklyPlanService) MarkDayCompleted(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int, completed bool) (*domain.WeeklyPlan, error) {
	plan, err := s.mutate(ctx, "mark_day_completed", caller, id, false, func(plan *domain.WeeklyPlan) error {
		return plan.MarkDayCompleted(day, completed)
	})
	if err == nil && completed {
		s.publish(ctx, domain.DayCompleted(plan, day, s.now()))
	}
	return plan, err
}

func (s *weeklyPlanService) MarkExerciseCompleted(ctx context.Context, caller domain.Caller, id primitive.ObjectID, day int, sessionExerciseID string, completed bool) (*domain.WeeklyPlan, error) {
	return s.mutate(ctx, "mark_exercise_completed", caller, id, false, func(plan *domain.WeeklyPlan) error {
		slot, err := plan.Day(day)
		if err != nil {
			return err
		}
		session, err := s.sessions.GetByID(ctx, caller.OrganizationID, slot.SessionID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return plan.MarkExerciseCompleted(day, session, sessionExerciseID, completed)
	})
}

func (s *weeklyPlanService) DuplicatePlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID, targetClientID string) (_ *domain.WeeklyPlan, err error) {
	defer func() { s.finish("duplicate_plan", err, zap.String("planId", id.Hex())) }()

	if err = requireCoach(caller); err != nil {
		return nil, err
	}
	source, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	dup := source.Duplicate(targetClientID)
	dup.CoachID = caller.UserID
	if err = s.persistNew(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// DeletePlan removes the plan and its unanswered feedback form.
func (s *weeklyPlanService) DeletePlan(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (err error) {
	defer func() { s.finish("delete_plan", err, zap.String("planId", id.Hex())) }()

	if err = requireCoach(caller); err != nil {
		return err
	}
	if err = s.plans.Delete(ctx, caller.OrganizationID, id); err != nil {
		return notFound(err, "weekly plan", id.Hex())
	}
	if err = s.forms.DeletePendingByWeeklyPlan(ctx, caller.OrganizationID, id); err != nil {
		s.Logger.Warn("failed to delete pending feedback form", zap.String("planId", id.Hex()), zap.Error(err))
	}
	return nil
}
