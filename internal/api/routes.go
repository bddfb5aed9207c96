package api

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/logging"
	"alcyxob/coaching-app/internal/metrics"
	"alcyxob/coaching-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services groups the services exposed over HTTP.
type Services struct {
	Sessions    service.SessionService
	WeeklyPlans service.WeeklyPlanService
	Nutrition   service.NutritionService
	Forms       service.FormService
}

// SetupMiddleware installs request logging, metrics and panic recovery.
// Recovery sits inside the metrics middleware so panicked requests are
// counted with their 500 status.
func SetupMiddleware(router *gin.Engine, logger *zap.Logger, m *metrics.Manager) {
	router.Use(
		logging.GinLogger(logger),
		metrics.RequestMetrics(m),
		logging.GinRecovery(logger, func() { m.CounterHandleRequestPanic.Inc() }),
	)
}

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	services Services,
	registry *prometheus.Registry,
	logger *zap.Logger,
) {
	sessionHandler := NewSessionHandler(services.Sessions, logger)
	planHandler := NewWeeklyPlanHandler(services.WeeklyPlans, logger)
	nutritionHandler := NewNutritionHandler(services.Nutrition, logger)
	formHandler := NewFormHandler(services.Forms, logger)

	authMiddleware := AuthMiddleware(jwtSecret)
	coachOnly := RoleMiddleware(domain.RoleCoach)
	clientOnly := RoleMiddleware(domain.RoleClient)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			who, ok := requestCaller(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": who.UserID, "role": who.Role, "organizationId": who.OrganizationID})
		})

		// --- Sessions ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", coachOnly, sessionHandler.CreateSession)
			sessionGroup.GET("", coachOnly, sessionHandler.ListSessions)
			sessionGroup.GET("/:sessionId", sessionHandler.GetSession)
			sessionGroup.PUT("/:sessionId", coachOnly, sessionHandler.UpdateSessionMeta)
			sessionGroup.DELETE("/:sessionId", coachOnly, sessionHandler.DeleteSession)
			sessionGroup.PUT("/:sessionId/type", coachOnly, sessionHandler.ChangeSessionType)
			sessionGroup.PUT("/:sessionId/order", coachOnly, sessionHandler.ReorderExercises)
			sessionGroup.POST("/:sessionId/duplicate", coachOnly, sessionHandler.DuplicateSession)
			sessionGroup.POST("/:sessionId/exercises", coachOnly, sessionHandler.AddExercise)
			sessionGroup.DELETE("/:sessionId/exercises/:exerciseId", coachOnly, sessionHandler.RemoveExercise)
			sessionGroup.PUT("/:sessionId/exercises/:exerciseId/config", coachOnly, sessionHandler.ReplaceExerciseConfig)
		}

		// --- Weekly Plans ---
		planGroup := protected.Group("/weekly-plans")
		{
			planGroup.POST("", coachOnly, planHandler.CreateWeeklyPlan)
			planGroup.GET("/:planId", planHandler.GetWeeklyPlan)
			planGroup.DELETE("/:planId", coachOnly, planHandler.DeletePlan)
			planGroup.PUT("/:planId/active", coachOnly, planHandler.SetActive)
			planGroup.POST("/:planId/duplicate", coachOnly, planHandler.DuplicatePlan)
			planGroup.GET("/:planId/feedback", formHandler.GetPlanFeedback)
			planGroup.GET("/:planId/days/:day", planHandler.GetPlanDay)
			planGroup.PUT("/:planId/days/:day", coachOnly, planHandler.AssignDay)
			planGroup.DELETE("/:planId/days/:day", coachOnly, planHandler.RemoveDay)
			planGroup.PUT("/:planId/days/:day/notes", coachOnly, planHandler.UpdateDayNotes)
			// clients and coaches both track completion
			planGroup.PUT("/:planId/days/:day/completion", planHandler.MarkDayCompleted)
			planGroup.PUT("/:planId/days/:day/exercises/:exerciseId/completion", planHandler.MarkExerciseCompleted)
		}

		// --- Nutrition Plans ---
		nutritionGroup := protected.Group("/nutrition-plans")
		{
			nutritionGroup.POST("", coachOnly, nutritionHandler.CreateNutritionPlan)
			nutritionGroup.GET("/:planId", nutritionHandler.GetNutritionPlan)
			nutritionGroup.DELETE("/:planId", coachOnly, nutritionHandler.DeletePlan)
			nutritionGroup.GET("/:planId/weeks/:week/days/:day", nutritionHandler.GetDay)
			nutritionGroup.POST("/:planId/recommendations", coachOnly, nutritionHandler.Recommend)
			nutritionGroup.DELETE("/:planId/recommendations/:index", coachOnly, nutritionHandler.Unrecommend)
			nutritionGroup.POST("/:planId/copy-week", coachOnly, nutritionHandler.CopyWeek)
			nutritionGroup.PUT("/:planId/total-weeks", coachOnly, nutritionHandler.SetTotalWeeks)
			nutritionGroup.PUT("/:planId/targets", coachOnly, nutritionHandler.UpdateTargets)
			nutritionGroup.POST("/:planId/selections", clientOnly, nutritionHandler.ToggleSelection)
			nutritionGroup.DELETE("/:planId/selections", clientOnly, nutritionHandler.Deselect)
		}

		// --- Forms ---
		formGroup := protected.Group("/forms")
		{
			formGroup.POST("/onboarding", coachOnly, formHandler.CreateOnboarding)
			formGroup.GET("/:formId", formHandler.GetFormResponse)
			formGroup.POST("/:formId/submit", clientOnly, formHandler.SubmitForm)
		}

		// --- Client views ---
		clientGroup := protected.Group("/clients/:clientId")
		{
			clientGroup.GET("/weekly-plans", planHandler.ListClientPlans)
			clientGroup.GET("/nutrition-plans", nutritionHandler.ListClientPlans)
			clientGroup.GET("/forms", formHandler.ListClientResponses)
			clientGroup.GET("/forms/due", formHandler.DueFeedback)
		}
	}
}
