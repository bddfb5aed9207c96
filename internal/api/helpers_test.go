package api

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var (
	coach  = domain.Caller{UserID: "coach-1", OrganizationID: "org-1", Role: domain.RoleCoach}
	client = domain.Caller{UserID: "client-1", OrganizationID: "org-1", Role: domain.RoleClient}
)

// The stubs embed the service interface; calling a method a test did not set
// up panics.

type stubSessionService struct {
	service.SessionService
	create func(who domain.Caller, meta domain.SessionMeta, exercises []domain.ExerciseInput) (*domain.Session, error)
}

func (s *stubSessionService) CreateSession(_ context.Context, who domain.Caller, meta domain.SessionMeta, exercises []domain.ExerciseInput) (*domain.Session, error) {
	return s.create(who, meta, exercises)
}

type stubWeeklyPlanService struct {
	service.WeeklyPlanService
	create       func(who domain.Caller, in domain.WeeklyPlanInput) (*domain.WeeklyPlan, error)
	get          func(who domain.Caller, id primitive.ObjectID) (*domain.WeeklyPlan, error)
	markDay      func(who domain.Caller, id primitive.ObjectID, day int, completed bool) (*domain.WeeklyPlan, error)
	deletePlan   func(who domain.Caller, id primitive.ObjectID) error
	listByClient func(who domain.Caller, clientID string) ([]domain.WeeklyPlan, error)
}

func (s *stubWeeklyPlanService) CreateWeeklyPlan(_ context.Context, who domain.Caller, in domain.WeeklyPlanInput) (*domain.WeeklyPlan, error) {
	return s.create(who, in)
}

func (s *stubWeeklyPlanService) GetWeeklyPlan(_ context.Context, who domain.Caller, id primitive.ObjectID) (*domain.WeeklyPlan, error) {
	return s.get(who, id)
}

func (s *stubWeeklyPlanService) MarkDayCompleted(_ context.Context, who domain.Caller, id primitive.ObjectID, day int, completed bool) (*domain.WeeklyPlan, error) {
	return s.markDay(who, id, day, completed)
}

func (s *stubWeeklyPlanService) DeletePlan(_ context.Context, who domain.Caller, id primitive.ObjectID) error {
	return s.deletePlan(who, id)
}

func (s *stubWeeklyPlanService) ListClientPlans(_ context.Context, who domain.Caller, clientID string) ([]domain.WeeklyPlan, error) {
	return s.listByClient(who, clientID)
}

type stubNutritionService struct {
	service.NutritionService
	selectDish func(who domain.Caller, id primitive.ObjectID, entry domain.DishEntry) (*domain.NutritionPlan, bool, error)
	getDay     func(who domain.Caller, id primitive.ObjectID, week, day int) (*service.NutritionDay, error)
}

func (s *stubNutritionService) Select(_ context.Context, who domain.Caller, id primitive.ObjectID, entry domain.DishEntry) (*domain.NutritionPlan, bool, error) {
	return s.selectDish(who, id, entry)
}

func (s *stubNutritionService) GetDay(_ context.Context, who domain.Caller, id primitive.ObjectID, week, day int) (*service.NutritionDay, error) {
	return s.getDay(who, id, week, day)
}

type stubFormService struct {
	service.FormService
	submit func(who domain.Caller, id primitive.ObjectID, answers []domain.Answer) (*domain.FormResponse, error)
}

func (s *stubFormService) Submit(_ context.Context, who domain.Caller, id primitive.ObjectID, answers []domain.Answer) (*domain.FormResponse, error) {
	return s.submit(who, id, answers)
}

type testServices struct {
	sessions  *stubSessionService
	plans     *stubWeeklyPlanService
	nutrition *stubNutritionService
	forms     *stubFormService
}

func newTestRouter(t *testing.T) (*gin.Engine, *testServices) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	stubs := &testServices{
		sessions:  &stubSessionService{},
		plans:     &stubWeeklyPlanService{},
		nutrition: &stubNutritionService{},
		forms:     &stubFormService{},
	}
	router := gin.New()
	SetupRoutes(router, testSecret, Services{
		Sessions:    stubs.sessions,
		WeeklyPlans: stubs.plans,
		Nutrition:   stubs.nutrition,
		Forms:       stubs.forms,
	}, prometheus.NewRegistry(), zap.NewNop())
	return router, stubs
}

func signToken(t *testing.T, claims jwtClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func tokenFor(t *testing.T, who domain.Caller) string {
	return signToken(t, jwtClaims{
		UserID:         who.UserID,
		Role:           who.Role,
		OrganizationID: who.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)
}

// doRequest sends body as JSON with a bearer token when token is not empty.
func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
