package api

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/service"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type WeeklyPlanHandler struct {
	planService service.WeeklyPlanService
	logger      *zap.Logger
}

func NewWeeklyPlanHandler(planService service.WeeklyPlanService, logger *zap.Logger) *WeeklyPlanHandler {
	return &WeeklyPlanHandler{planService: planService, logger: logger}
}

// --- DTOs ---

// CreateWeeklyPlanRequest uses calendar dates in YYYY-MM-DD form. Days maps
// dayOfWeek ("0".."6", Sunday first) to a session id.
type CreateWeeklyPlanRequest struct {
	ClientID       string            `json:"clientId" binding:"required"`
	Name           string            `json:"name" binding:"required"`
	StartDate      string            `json:"startDate" binding:"required"`
	EndDate        string            `json:"endDate" binding:"required"`
	IsActive       bool              `json:"isActive"`
	FormTemplateID string            `json:"formTemplateId"`
	Days           map[string]string `json:"days"`
}

type AssignDayRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Notes     string `json:"notes"`
}

type DayNotesRequest struct {
	Notes string `json:"notes"`
}

type CompletionRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

type DuplicatePlanRequest struct {
	ClientID string `json:"clientId"`
}

// WeeklyPlanResponse adds the derived progress to a plan.
type WeeklyPlanResponse struct {
	*domain.WeeklyPlan
	Progress domain.Progress `json:"progress"`
}

type PlanDayResponse struct {
	DayOfWeek int                `json:"dayOfWeek"`
	Day       *domain.DaySession `json:"day"`
	Session   *domain.Session    `json:"session"`
}

func MapWeeklyPlanToResponse(p *domain.WeeklyPlan) WeeklyPlanResponse {
	return WeeklyPlanResponse{WeeklyPlan: p, Progress: p.Progress()}
}

func MapWeeklyPlansToResponse(plans []domain.WeeklyPlan) []WeeklyPlanResponse {
	out := make([]WeeklyPlanResponse, len(plans))
	for i := range plans {
		out[i] = MapWeeklyPlanToResponse(&plans[i])
	}
	return out
}

func (r CreateWeeklyPlanRequest) toInput() (domain.WeeklyPlanInput, error) {
	start, err := time.Parse(time.DateOnly, r.StartDate)
	if err != nil {
		return domain.WeeklyPlanInput{}, fmt.Errorf("%w: startDate must be YYYY-MM-DD", domain.ErrValidation)
	}
	end, err := time.Parse(time.DateOnly, r.EndDate)
	if err != nil {
		return domain.WeeklyPlanInput{}, fmt.Errorf("%w: endDate must be YYYY-MM-DD", domain.ErrValidation)
	}
	days := make(map[int]primitive.ObjectID, len(r.Days))
	for key, hex := range r.Days {
		day, err := strconv.Atoi(key)
		if err != nil {
			return domain.WeeklyPlanInput{}, fmt.Errorf("%w: day key %q is not a number", domain.ErrValidation, key)
		}
		sessionID, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return domain.WeeklyPlanInput{}, fmt.Errorf("%w: invalid session id %q", domain.ErrValidation, hex)
		}
		days[day] = sessionID
	}
	return domain.WeeklyPlanInput{
		ClientID:       r.ClientID,
		Name:           r.Name,
		StartDate:      start,
		EndDate:        end,
		IsActive:       r.IsActive,
		FormTemplateID: r.FormTemplateID,
		Days:           days,
	}, nil
}

// respond writes a plan or the error that prevented producing it.
func (h *WeeklyPlanHandler) respond(c *gin.Context, code int, plan *domain.WeeklyPlan, err error) {
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(code, MapWeeklyPlanToResponse(plan))
}

// dayMutation resolves the plan id and the day path parameter before run.
func (h *WeeklyPlanHandler) dayMutation(c *gin.Context, req any, run func(who domain.Caller, id primitive.ObjectID, day int) (*domain.WeeklyPlan, error)) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	if req != nil {
		if err := c.ShouldBindJSON(req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
	}
	plan, err := run(who, id, day)
	h.respond(c, http.StatusOK, plan, err)
}

// --- Handler Methods ---

// CreateWeeklyPlan godoc
// @Summary Create a weekly plan for a client
// @Tags WeeklyPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreateWeeklyPlanRequest true "Plan details"
// @Success 201 {object} WeeklyPlanResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Session or form template not found"
// @Router /weekly-plans [post]
func (h *WeeklyPlanHandler) CreateWeeklyPlan(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	var req CreateWeeklyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	plan, err := h.planService.CreateWeeklyPlan(c.Request.Context(), who, in)
	h.respond(c, http.StatusCreated, plan, err)
}

// GetWeeklyPlan godoc
// @Summary Get a weekly plan with its progress
// @Tags WeeklyPlans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} WeeklyPlanResponse
// @Router /weekly-plans/{planId} [get]
func (h *WeeklyPlanHandler) GetWeeklyPlan(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	plan, err := h.planService.GetWeeklyPlan(c.Request.Context(), who, id)
	h.respond(c, http.StatusOK, plan, err)
}

// GetPlanDay godoc
// @Summary Get one day of a plan with its session
// @Tags WeeklyPlans
// @Success 200 {object} PlanDayResponse
// @Router /weekly-plans/{planId}/days/{day} [get]
func (h *WeeklyPlanHandler) GetPlanDay(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	pd, err := h.planService.GetPlanDay(c.Request.Context(), who, id, day)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, PlanDayResponse{DayOfWeek: pd.DayOfWeek, Day: pd.Day, Session: pd.Session})
}

// ListClientPlans godoc
// @Summary List a client's weekly plans
// @Tags WeeklyPlans
// @Success 200 {array} WeeklyPlanResponse
// @Router /clients/{clientId}/weekly-plans [get]
func (h *WeeklyPlanHandler) ListClientPlans(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	plans, err := h.planService.ListClientPlans(c.Request.Context(), who, c.Param("clientId"))
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapWeeklyPlansToResponse(plans))
}

// AssignDay godoc
// @Summary Assign a session to an empty day
// @Tags WeeklyPlans
// @Failure 409 {object} gin.H "Day already assigned or the week is full"
// @Router /weekly-plans/{planId}/days/{day} [put]
func (h *WeeklyPlanHandler) AssignDay(c *gin.Context) {
	var req AssignDayRequest
	h.dayMutation(c, &req, func(who domain.Caller, id primitive.ObjectID, day int) (*domain.WeeklyPlan, error) {
		sessionID, err := primitive.ObjectIDFromHex(req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid session id %q", domain.ErrValidation, req.SessionID)
		}
		return h.planService.AssignDay(c.Request.Context(), who, id, day, sessionID, req.Notes)
	})
}

// RemoveDay godoc
// @Summary Clear a day
// @Tags WeeklyPlans
// @Router /weekly-plans/{planId}/days/{day} [delete]
func (h *WeeklyPlanHandler) RemoveDay(c *gin.Context) {
	h.dayMutation(c, nil, func(who domain.Caller, id primitive.ObjectID, day int) (*domain.WeeklyPlan, error) {
		return h.planService.RemoveDay(c.Request.Context(), who, id, day)
	})
}

// UpdateDayNotes godoc
// @Summary Replace the notes of an assigned day
// @Tags WeeklyPlans
// @Router /weekly-plans/{planId}/days/{day}/notes [put]
func (h *WeeklyPlanHandler) UpdateDayNotes(c *gin.Context) {
	var req DayNotesRequest
	h.dayMutation(c, &req, func(who domain.Caller, id primitive.ObjectID, day int) (*domain.WeeklyPlan, error) {
		return h.planService.UpdateDayNotes(c.Request.Context(), who, id, day, req.Notes)
	})
}

// MarkDayCompleted godoc
// @Summary Set the completed flag of a day
// @Tags WeeklyPlans
// @Router /weekly-plans/{planId}/days/{day}/completion [put]
func (h *WeeklyPlanHandler) MarkDayCompleted(c *gin.Context) {
	var req CompletionRequest
	h.dayMutation(c, &req, func(who domain.Caller, id primitive.ObjectID, day int) (*domain.WeeklyPlan, error) {
		return h.planService.MarkDayCompleted(c.Request.Context(), who, id, day, *req.Completed)
	})
}

// MarkExerciseCompleted godoc
// @Summary Mark one exercise of a day as completed or not
// @Tags WeeklyPlans
// @Router /weekly-plans/{planId}/days/{day}/exercises/{exerciseId}/completion [put]
func (h *WeeklyPlanHandler) MarkExerciseCompleted(c *gin.Context) {
	var req CompletionRequest
	h.dayMutation(c, &req, func(who domain.Caller, id primitive.ObjectID, day int) (*domain.WeeklyPlan, error) {
		return h.planService.MarkExerciseCompleted(c.Request.Context(), who, id, day, c.Param("exerciseId"), *req.Completed)
	})
}

// SetActive godoc
// @Summary Activate or deactivate a plan
// @Tags WeeklyPlans
// @Router /weekly-plans/{planId}/active [put]
func (h *WeeklyPlanHandler) SetActive(c *gin.Context) {
	var req SetActiveRequest
	handleMutation(c, h.logger, "planId", &req, func(who domain.Caller, id primitive.ObjectID) (WeeklyPlanResponse, error) {
		plan, err := h.planService.SetActive(c.Request.Context(), who, id, *req.IsActive)
		if err != nil {
			return WeeklyPlanResponse{}, err
		}
		return MapWeeklyPlanToResponse(plan), nil
	})
}

// DuplicatePlan godoc
// @Summary Copy a plan into the following week
// @Tags WeeklyPlans
// @Success 201 {object} WeeklyPlanResponse
// @Router /weekly-plans/{planId}/duplicate [post]
func (h *WeeklyPlanHandler) DuplicatePlan(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	var req DuplicatePlanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
	}
	plan, err := h.planService.DuplicatePlan(c.Request.Context(), who, id, req.ClientID)
	h.respond(c, http.StatusCreated, plan, err)
}

// DeletePlan godoc
// @Summary Delete a plan and its unanswered feedback form
// @Tags WeeklyPlans
// @Success 204
// @Router /weekly-plans/{planId} [delete]
func (h *WeeklyPlanHandler) DeletePlan(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), who, id); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
