package service

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// FormDetail pairs a response with the template it answers.
type FormDetail struct {
	Response *domain.FormResponse
	Template *domain.FormTemplate
}

type FormService interface {
	CreateOnboarding(ctx context.Context, caller domain.Caller, clientID, templateID string) (*domain.FormResponse, error)
	GetFormResponse(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*FormDetail, error)
	GetPlanFeedback(ctx context.Context, caller domain.Caller, planID primitive.ObjectID) (*domain.FormResponse, error)
	ListClientResponses(ctx context.Context, caller domain.Caller, clientID string) ([]domain.FormResponse, error)
	Submit(ctx context.Context, caller domain.Caller, id primitive.ObjectID, answers []domain.Answer) (*domain.FormResponse, error)
	DueFeedback(ctx context.Context, caller domain.Caller, clientID string) ([]domain.FormResponse, error)
}

type formService struct {
	Infra
	forms     repository.FormResponseRepository
	templates repository.FormTemplateRepository
	plans     repository.WeeklyPlanRepository
}

func NewFormService(infra Infra, forms repository.FormResponseRepository, templates repository.FormTemplateRepository, plans repository.WeeklyPlanRepository) FormService {
	return &formService{
		Infra:     infra,
		forms:     forms,
		templates: templates,
		plans:     plans,
	}
}

func (s *formService) CreateOnboarding(ctx context.Context, caller domain.Caller, clientID, templateID string) (_ *domain.FormResponse, err error) {
	defer func() { s.finish("create_onboarding_form", err, zap.String("clientId", clientID)) }()

	if err = requireCoach(caller); err != nil {
		return nil, err
	}
	form, err := domain.NewOnboardingResponse(caller.OrganizationID, clientID, templateID)
	if err != nil {
		return nil, err
	}
	if _, err = s.templates.GetByID(ctx, caller.OrganizationID, templateID); err != nil {
		return nil, notFound(err, "form template", templateID)
	}
	if err = s.forms.Create(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *formService) load(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*domain.FormResponse, error) {
	form, err := s.forms.GetByID(ctx, caller.OrganizationID, id)
	if err != nil {
		return nil, notFound(err, "form response", id.Hex())
	}
	if err := requireClientAccess(caller, form.ClientID); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *formService) GetFormResponse(ctx context.Context, caller domain.Caller, id primitive.ObjectID) (*FormDetail, error) {
	form, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	tpl, err := s.templates.GetByID(ctx, caller.OrganizationID, form.TemplateID)
	if err != nil {
		return nil, notFound(err, "form template", form.TemplateID)
	}
	return &FormDetail{Response: form, Template: tpl}, nil
}

func (s *formService) GetPlanFeedback(ctx context.Context, caller domain.Caller, planID primitive.ObjectID) (*domain.FormResponse, error) {
	form, err := s.forms.GetByWeeklyPlan(ctx, caller.OrganizationID, planID)
	if err != nil {
		return nil, notFound(err, "feedback form of plan", planID.Hex())
	}
	if err := requireClientAccess(caller, form.ClientID); err != nil {
		return nil, err
	}
	return form, nil
}

func (s *formService) ListClientResponses(ctx context.Context, caller domain.Caller, clientID string) ([]domain.FormResponse, error) {
	if err := requireClientAccess(caller, clientID); err != nil {
		return nil, err
	}
	return s.forms.ListByClient(ctx, caller.OrganizationID, clientID)
}

// Submit answers a pending form. Only the client the form belongs to can
// submit it.
func (s *formService) Submit(ctx context.Context, caller domain.Caller, id primitive.ObjectID, answers []domain.Answer) (_ *domain.FormResponse, err error) {
	defer func() { s.finish("submit_form", err, zap.String("formId", id.Hex())) }()

	form, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsClient() || caller.UserID != form.ClientID {
		return nil, ErrAccessDenied
	}
	tpl, err := s.templates.GetByID(ctx, caller.OrganizationID, form.TemplateID)
	if err != nil {
		return nil, notFound(err, "form template", form.TemplateID)
	}
	if err = form.Submit(tpl, answers, s.now()); err != nil {
		return nil, err
	}
	if err = s.forms.Replace(ctx, form); err != nil {
		return nil, notFound(err, "form response", id.Hex())
	}
	s.publish(ctx, domain.FormSubmitted(form, s.now()))
	return form, nil
}

// DueFeedback lists the pending feedback forms of a client whose weekly plan
// has reached its end date. Forms whose plan is gone are skipped.
func (s *formService) DueFeedback(ctx context.Context, caller domain.Caller, clientID string) ([]domain.FormResponse, error) {
	forms, err := s.ListClientResponses(ctx, caller, clientID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	due := []domain.FormResponse{}
	for _, form := range forms {
		if form.Status != domain.FormPending || form.Kind() != domain.FormFeedback {
			continue
		}
		plan, err := s.plans.GetByID(ctx, caller.OrganizationID, *form.WeeklyPlanID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if plan.HasEnded(now) {
			due = append(due, form)
		}
	}
	return due, nil
}
