package service

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/repository"
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	testNow   = time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)
	orgID     = "org-1"
	coach     = domain.Caller{UserID: "coach-1", OrganizationID: orgID, Role: domain.RoleCoach}
	client    = domain.Caller{UserID: "client-1", OrganizationID: orgID, Role: domain.RoleClient}
	otherUser = domain.Caller{UserID: "client-2", OrganizationID: orgID, Role: domain.RoleClient}
)

func testInfra(pub *recordingPublisher) Infra {
	infra := Infra{
		Logger:  zap.NewNop(),
		Metrics: metrics.NewTestManager(),
		Now:     func() time.Time { return testNow },
	}
	if pub != nil {
		infra.Publisher = pub
	}
	return infra
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// memStore is a tenant-scoped in-memory document store. Documents are copied
// in and out through the clone function so callers never share state with it.
type memStore[T any] struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID]T
	order []primitive.ObjectID
	org   func(T) string
	id    func(T) primitive.ObjectID
	clone func(T) T
}

func newMemStore[T any](org func(T) string, id func(T) primitive.ObjectID, clone func(T) T) *memStore[T] {
	return &memStore[T]{docs: map[primitive.ObjectID]T{}, org: org, id: id, clone: clone}
}

func (m *memStore[T]) put(doc T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id(doc)
	if _, ok := m.docs[id]; !ok {
		m.order = append(m.order, id)
	}
	m.docs[id] = m.clone(doc)
}

func (m *memStore[T]) get(orgID string, id primitive.ObjectID) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok || m.org(doc) != orgID {
		var zero T
		return zero, repository.ErrNotFound
	}
	return m.clone(doc), nil
}

func (m *memStore[T]) replace(doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id(doc)
	old, ok := m.docs[id]
	if !ok || m.org(old) != m.org(doc) {
		return repository.ErrNotFound
	}
	m.docs[id] = m.clone(doc)
	return nil
}

func (m *memStore[T]) delete(orgID string, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok || m.org(doc) != orgID {
		return repository.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *memStore[T]) filter(keep func(T) bool) []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []T{}
	for _, id := range m.order {
		doc, ok := m.docs[id]
		if ok && keep(doc) {
			out = append(out, m.clone(doc))
		}
	}
	return out
}

func (m *memStore[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// --- sessions ---

type fakeSessionRepo struct{ *memStore[domain.Session] }

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{newMemStore(
		func(s domain.Session) string { return s.OrganizationID },
		func(s domain.Session) primitive.ObjectID { return s.ID },
		func(s domain.Session) domain.Session {
			s.Exercises = append([]domain.SessionExercise{}, s.Exercises...)
			s.GoalIDs = append([]string{}, s.GoalIDs...)
			s.MuscleFocusIDs = append([]string{}, s.MuscleFocusIDs...)
			return s
		},
	)}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.put(*s)
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, orgID string, id primitive.ObjectID) (*domain.Session, error) {
	s, err := r.get(orgID, id)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *fakeSessionRepo) GetByIDs(_ context.Context, orgID string, ids []primitive.ObjectID) ([]domain.Session, error) {
	want := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(s domain.Session) bool { return s.OrganizationID == orgID && want[s.ID] }), nil
}

func (r *fakeSessionRepo) ListByOrganization(_ context.Context, orgID string) ([]domain.Session, error) {
	return r.filter(func(s domain.Session) bool { return s.OrganizationID == orgID }), nil
}

func (r *fakeSessionRepo) Replace(_ context.Context, s *domain.Session) error {
	return r.replace(*s)
}

func (r *fakeSessionRepo) Delete(_ context.Context, orgID string, id primitive.ObjectID) error {
	return r.delete(orgID, id)
}

// --- weekly plans ---

type fakeWeeklyPlanRepo struct{ *memStore[domain.WeeklyPlan] }

func cloneWeeklyPlan(p domain.WeeklyPlan) domain.WeeklyPlan {
	out := p
	for i, slot := range p.Days {
		if slot == nil {
			continue
		}
		c := *slot
		c.CompletedExercises = append([]string{}, slot.CompletedExercises...)
		out.Days[i] = &c
	}
	return out
}

func newFakeWeeklyPlanRepo() *fakeWeeklyPlanRepo {
	return &fakeWeeklyPlanRepo{newMemStore(
		func(p domain.WeeklyPlan) string { return p.OrganizationID },
		func(p domain.WeeklyPlan) primitive.ObjectID { return p.ID },
		cloneWeeklyPlan,
	)}
}

func (r *fakeWeeklyPlanRepo) Create(_ context.Context, p *domain.WeeklyPlan) error {
	r.put(*p)
	return nil
}

func (r *fakeWeeklyPlanRepo) GetByID(_ context.Context, orgID string, id primitive.ObjectID) (*domain.WeeklyPlan, error) {
	p, err := r.get(orgID, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *fakeWeeklyPlanRepo) ListByClient(_ context.Context, orgID, clientID string) ([]domain.WeeklyPlan, error) {
	return r.filter(func(p domain.WeeklyPlan) bool { return p.OrganizationID == orgID && p.ClientID == clientID }), nil
}

func (r *fakeWeeklyPlanRepo) ExistsWithSession(_ context.Context, orgID string, sessionID primitive.ObjectID) (bool, error) {
	found := r.filter(func(p domain.WeeklyPlan) bool {
		if p.OrganizationID != orgID {
			return false
		}
		for _, id := range p.SessionIDs() {
			if id == sessionID {
				return true
			}
		}
		return false
	})
	return len(found) > 0, nil
}

func (r *fakeWeeklyPlanRepo) Replace(_ context.Context, p *domain.WeeklyPlan) error {
	return r.replace(*p)
}

func (r *fakeWeeklyPlanRepo) Delete(_ context.Context, orgID string, id primitive.ObjectID) error {
	return r.delete(orgID, id)
}

// --- nutrition plans ---

type fakeNutritionPlanRepo struct{ *memStore[domain.NutritionPlan] }

func newFakeNutritionPlanRepo() *fakeNutritionPlanRepo {
	return &fakeNutritionPlanRepo{newMemStore(
		func(p domain.NutritionPlan) string { return p.OrganizationID },
		func(p domain.NutritionPlan) primitive.ObjectID { return p.ID },
		func(p domain.NutritionPlan) domain.NutritionPlan {
			p.RecommendedDishes = append([]domain.DishEntry{}, p.RecommendedDishes...)
			p.ClientSelections = append([]domain.DishEntry{}, p.ClientSelections...)
			return p
		},
	)}
}

func (r *fakeNutritionPlanRepo) Create(_ context.Context, p *domain.NutritionPlan) error {
	r.put(*p)
	return nil
}

func (r *fakeNutritionPlanRepo) GetByID(_ context.Context, orgID string, id primitive.ObjectID) (*domain.NutritionPlan, error) {
	p, err := r.get(orgID, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *fakeNutritionPlanRepo) ListByClient(_ context.Context, orgID, clientID string) ([]domain.NutritionPlan, error) {
	return r.filter(func(p domain.NutritionPlan) bool { return p.OrganizationID == orgID && p.ClientID == clientID }), nil
}

func (r *fakeNutritionPlanRepo) Replace(_ context.Context, p *domain.NutritionPlan) error {
	return r.replace(*p)
}

func (r *fakeNutritionPlanRepo) Delete(_ context.Context, orgID string, id primitive.ObjectID) error {
	return r.delete(orgID, id)
}

// --- form responses ---

type fakeFormResponseRepo struct {
	*memStore[domain.FormResponse]
	createErr error
}

func newFakeFormResponseRepo() *fakeFormResponseRepo {
	return &fakeFormResponseRepo{memStore: newMemStore(
		func(f domain.FormResponse) string { return f.OrganizationID },
		func(f domain.FormResponse) primitive.ObjectID { return f.ID },
		func(f domain.FormResponse) domain.FormResponse {
			f.Answers = append([]domain.Answer{}, f.Answers...)
			return f
		},
	)}
}

func (r *fakeFormResponseRepo) Create(_ context.Context, f *domain.FormResponse) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(*f)
	return nil
}

func (r *fakeFormResponseRepo) GetByID(_ context.Context, orgID string, id primitive.ObjectID) (*domain.FormResponse, error) {
	f, err := r.get(orgID, id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fakeFormResponseRepo) GetByWeeklyPlan(_ context.Context, orgID string, planID primitive.ObjectID) (*domain.FormResponse, error) {
	found := r.filter(func(f domain.FormResponse) bool {
		return f.OrganizationID == orgID && f.WeeklyPlanID != nil && *f.WeeklyPlanID == planID
	})
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (r *fakeFormResponseRepo) ListByClient(_ context.Context, orgID, clientID string) ([]domain.FormResponse, error) {
	return r.filter(func(f domain.FormResponse) bool { return f.OrganizationID == orgID && f.ClientID == clientID }), nil
}

func (r *fakeFormResponseRepo) Replace(_ context.Context, f *domain.FormResponse) error {
	return r.replace(*f)
}

func (r *fakeFormResponseRepo) DeletePendingByWeeklyPlan(_ context.Context, orgID string, planID primitive.ObjectID) error {
	pending := r.filter(func(f domain.FormResponse) bool {
		return f.OrganizationID == orgID && f.Status == domain.FormPending &&
			f.WeeklyPlanID != nil && *f.WeeklyPlanID == planID
	})
	for _, f := range pending {
		_ = r.delete(orgID, f.ID)
	}
	return nil
}

// --- catalogs ---

type fakeExerciseCatalog struct {
	exercises map[string]domain.Exercise
	err       error
}

func newFakeExerciseCatalog(exercises ...domain.Exercise) *fakeExerciseCatalog {
	c := &fakeExerciseCatalog{exercises: map[string]domain.Exercise{}}
	for _, ex := range exercises {
		c.exercises[ex.ID.Hex()] = ex
	}
	return c
}

func (c *fakeExerciseCatalog) GetByID(_ context.Context, _, id string) (*domain.Exercise, error) {
	ex, ok := c.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ex, nil
}

func (c *fakeExerciseCatalog) GetByIDs(_ context.Context, _ string, ids []string) ([]domain.Exercise, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := []domain.Exercise{}
	for _, id := range ids {
		if ex, ok := c.exercises[id]; ok {
			out = append(out, ex)
		}
	}
	return out, nil
}

type fakeDishCatalog struct {
	dishes map[string]domain.Dish
}

func newFakeDishCatalog(dishes ...domain.Dish) *fakeDishCatalog {
	c := &fakeDishCatalog{dishes: map[string]domain.Dish{}}
	for _, d := range dishes {
		c.dishes[d.ID.Hex()] = d
	}
	return c
}

func (c *fakeDishCatalog) GetByIDs(_ context.Context, ids []string) ([]domain.Dish, error) {
	out := []domain.Dish{}
	for _, id := range ids {
		if d, ok := c.dishes[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeTemplateRepo struct {
	templates map[string]domain.FormTemplate
}

func newFakeTemplateRepo(templates ...domain.FormTemplate) *fakeTemplateRepo {
	r := &fakeTemplateRepo{templates: map[string]domain.FormTemplate{}}
	for _, t := range templates {
		r.templates[t.ID.Hex()] = t
	}
	return r
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, orgID, id string) (*domain.FormTemplate, error) {
	t, ok := r.templates[id]
	if !ok || t.OrganizationID != orgID {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

// fakeMedia signs every key with a fixed host.
type fakeMedia struct{ fail bool }

func (m fakeMedia) PresignedDownloadURL(_ context.Context, key string) (string, error) {
	if m.fail {
		return "", errors.New("signing failed")
	}
	return "https://media.test/" + key + "?sig=1", nil
}
