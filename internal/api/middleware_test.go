package api

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/metrics"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPing(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", decodeBody(t, rec)["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupMiddleware_PanicCountedAsServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, _ := metrics.NewTestManagerAndRegistry()

	router := gin.New()
	SetupMiddleware(router, zap.NewNop(), m)
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := doRequest(t, router, http.MethodGet, "/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decodeBody(t, rec)["error"])

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHandleRequestPanic))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRequests.With(prometheus.Labels{"method": "GET", "status": "500"})))
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := newTestRouter(t)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{
			name:    "missing header",
			header:  "",
			wantMsg: "Authorization header is missing",
		},
		{
			name:    "not a bearer token",
			header:  "Token abc",
			wantMsg: "Authorization header format must be Bearer {token}",
		},
		{
			name: "expired",
			header: "Bearer " + signToken(t, jwtClaims{
				UserID: "coach-1", Role: domain.RoleCoach, OrganizationID: "org-1",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
			}, testSecret),
			wantMsg: "Token has expired",
		},
		{
			name: "unknown role",
			header: "Bearer " + signToken(t, jwtClaims{
				UserID: "admin-1", Role: "admin", OrganizationID: "org-1",
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
			}, testSecret),
			wantMsg: "Unknown role 'admin' in token",
		},
		{
			name: "missing organization",
			header: "Bearer " + signToken(t, jwtClaims{
				UserID: "coach-1", Role: domain.RoleCoach,
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
			}, testSecret),
			wantMsg: "Invalid token or missing claims",
		},
		{
			name: "no expiry",
			header: "Bearer " + signToken(t, jwtClaims{
				UserID: "coach-1", Role: domain.RoleCoach, OrganizationID: "org-1",
			}, testSecret),
			wantMsg: "Token has no expiry",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeBody(t, rec)["error"])
		})
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signToken(t, jwtClaims{
		UserID: "coach-1", Role: domain.RoleCoach, OrganizationID: "org-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}, "another-secret")

	rec := doRequest(t, router, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "Invalid token")
}

func TestAuthMiddleware_StoresCaller(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/me", tokenFor(t, client), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "client-1", body["userId"])
	assert.Equal(t, "client", body["role"])
	assert.Equal(t, "org-1", body["organizationId"])
}

func TestRoleMiddleware(t *testing.T) {
	router, _ := newTestRouter(t)

	// creating sessions is reserved to coaches
	rec := doRequest(t, router, http.MethodPost, "/api/v1/sessions", tokenFor(t, client), CreateSessionRequest{
		Name: "Legs",
		Type: domain.SessionStrength,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied: Role 'client' does not have permission", decodeBody(t, rec)["error"])

	// selecting dishes is reserved to clients
	rec = doRequest(t, router, http.MethodPost, "/api/v1/nutrition-plans/"+primitiveHex()+"/selections", tokenFor(t, coach), DishEntryRequest{
		DishID:   "dish-1",
		MealType: domain.MealLunch,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
