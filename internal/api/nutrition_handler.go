package api

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type NutritionHandler struct {
	nutritionService service.NutritionService
	logger           *zap.Logger
}

func NewNutritionHandler(nutritionService service.NutritionService, logger *zap.Logger) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService, logger: logger}
}

// --- DTOs ---

type CreateNutritionPlanRequest struct {
	ClientID   string                  `json:"clientId" binding:"required"`
	Name       string                  `json:"name" binding:"required"`
	TotalWeeks int                     `json:"totalWeeks" binding:"required"`
	IsActive   bool                    `json:"isActive"`
	Targets    domain.NutritionTargets `json:"targets"`
	Notes      string                  `json:"notes"`
}

// DishEntryRequest addresses one dish slot of a plan.
type DishEntryRequest struct {
	DishID     string          `json:"dishId" binding:"required"`
	MealType   domain.MealType `json:"mealType" binding:"required"`
	WeekNumber int             `json:"weekNumber"`
	DayOfWeek  int             `json:"dayOfWeek"`
}

func (r DishEntryRequest) toEntry() domain.DishEntry {
	return domain.DishEntry{DishID: r.DishID, MealType: r.MealType, WeekNumber: r.WeekNumber, DayOfWeek: r.DayOfWeek}
}

type CopyWeekRequest struct {
	SourceWeek int `json:"sourceWeek" binding:"required"`
	TargetWeek int `json:"targetWeek" binding:"required"`
}

type TotalWeeksRequest struct {
	TotalWeeks int `json:"totalWeeks"`
}

type TargetsRequest struct {
	Targets domain.NutritionTargets `json:"targets"`
	Notes   string                  `json:"notes"`
}

type SelectionResponse struct {
	Selected bool                  `json:"selected"`
	Plan     *domain.NutritionPlan `json:"plan"`
}

type NutritionDayResponse struct {
	PlanID            string                                 `json:"planId"`
	WeekNumber        int                                    `json:"weekNumber"`
	DayOfWeek         int                                    `json:"dayOfWeek"`
	Recommended       map[domain.MealType][]domain.DishEntry `json:"recommended"`
	Selected          map[domain.MealType][]domain.DishEntry `json:"selected"`
	Dishes            map[string]service.DishView            `json:"dishes"`
	RecommendedTotals domain.Nutrients                       `json:"recommendedTotals"`
	SelectedTotals    domain.Nutrients                       `json:"selectedTotals"`
	Adherence         domain.DayAdherence                    `json:"adherence"`
}

func MapNutritionDayToResponse(d *service.NutritionDay) NutritionDayResponse {
	return NutritionDayResponse{
		PlanID:            d.PlanID.Hex(),
		WeekNumber:        d.WeekNumber,
		DayOfWeek:         d.DayOfWeek,
		Recommended:       d.Recommended,
		Selected:          d.Selected,
		Dishes:            d.Dishes,
		RecommendedTotals: d.RecommendedTotals,
		SelectedTotals:    d.SelectedTotals,
		Adherence:         d.Adherence,
	}
}

// --- Handler Methods ---

// CreateNutritionPlan godoc
// @Summary Create a nutrition plan for a client
// @Tags NutritionPlans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreateNutritionPlanRequest true "Plan details"
// @Success 201 {object} domain.NutritionPlan
// @Router /nutrition-plans [post]
func (h *NutritionHandler) CreateNutritionPlan(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	var req CreateNutritionPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	plan, err := h.nutritionService.CreateNutritionPlan(c.Request.Context(), who, domain.NutritionPlanInput{
		ClientID:   req.ClientID,
		Name:       req.Name,
		TotalWeeks: req.TotalWeeks,
		IsActive:   req.IsActive,
		Targets:    req.Targets,
		Notes:      req.Notes,
	})
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// GetNutritionPlan godoc
// @Summary Get a nutrition plan
// @Tags NutritionPlans
// @Router /nutrition-plans/{planId} [get]
func (h *NutritionHandler) GetNutritionPlan(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	plan, err := h.nutritionService.GetNutritionPlan(c.Request.Context(), who, id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ListClientPlans godoc
// @Summary List a client's nutrition plans
// @Tags NutritionPlans
// @Router /clients/{clientId}/nutrition-plans [get]
func (h *NutritionHandler) ListClientPlans(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	plans, err := h.nutritionService.ListClientPlans(c.Request.Context(), who, c.Param("clientId"))
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	if plans == nil {
		plans = []domain.NutritionPlan{}
	}
	c.JSON(http.StatusOK, plans)
}

// GetDay godoc
// @Summary Day view with dishes, totals and adherence
// @Tags NutritionPlans
// @Success 200 {object} NutritionDayResponse
// @Router /nutrition-plans/{planId}/weeks/{week}/days/{day} [get]
func (h *NutritionHandler) GetDay(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	week, ok := intParam(c, "week")
	if !ok {
		return
	}
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	view, err := h.nutritionService.GetDay(c.Request.Context(), who, id, week, day)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapNutritionDayToResponse(view))
}

// Recommend godoc
// @Summary Recommend a dish for a meal slot
// @Tags NutritionPlans
// @Router /nutrition-plans/{planId}/recommendations [post]
func (h *NutritionHandler) Recommend(c *gin.Context) {
	var req DishEntryRequest
	handleMutation(c, h.logger, "planId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.NutritionPlan, error) {
		return h.nutritionService.Recommend(c.Request.Context(), who, id, req.toEntry())
	})
}

// Unrecommend godoc
// @Summary Remove the recommendation at an index
// @Tags NutritionPlans
// @Router /nutrition-plans/{planId}/recommendations/{index} [delete]
func (h *NutritionHandler) Unrecommend(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	plan, err := h.nutritionService.Unrecommend(c.Request.Context(), who, id, index)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ToggleSelection godoc
// @Summary Select a dish, or unselect it when already selected
// @Tags NutritionPlans
// @Success 200 {object} SelectionResponse
// @Router /nutrition-plans/{planId}/selections [post]
func (h *NutritionHandler) ToggleSelection(c *gin.Context) {
	var req DishEntryRequest
	handleMutation(c, h.logger, "planId", &req, func(who domain.Caller, id primitive.ObjectID) (SelectionResponse, error) {
		plan, selected, err := h.nutritionService.Select(c.Request.Context(), who, id, req.toEntry())
		return SelectionResponse{Selected: selected, Plan: plan}, err
	})
}

// Deselect godoc
// @Summary Remove a selection if present
// @Tags NutritionPlans
// @Router /nutrition-plans/{planId}/selections [delete]
func (h *NutritionHandler) Deselect(c *gin.Context) {
	var req DishEntryRequest
	handleMutation(c, h.logger, "planId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.NutritionPlan, error) {
		return h.nutritionService.Deselect(c.Request.Context(), who, id, req.toEntry())
	})
}

// CopyWeek godoc
// @Summary Replace a week's recommendations with those of another week
// @Tags NutritionPlans
// @Router /nutrition-plans/{planId}/copy-week [post]
func (h *NutritionHandler) CopyWeek(c *gin.Context) {
	var req CopyWeekRequest
	handleMutation(c, h.logger, "planId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.NutritionPlan, error) {
		return h.nutritionService.CopyWeek(c.Request.Context(), who, id, req.SourceWeek, req.TargetWeek)
	})
}

// SetTotalWeeks godoc
// @Summary Change the plan length
// @Tags NutritionPlans
// @Router /nutrition-plans/{planId}/total-weeks [put]
func (h *NutritionHandler) SetTotalWeeks(c *gin.Context) {
	var req TotalWeeksRequest
	handleMutation(c, h.logger, "planId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.NutritionPlan, error) {
		return h.nutritionService.SetTotalWeeks(c.Request.Context(), who, id, req.TotalWeeks)
	})
}

// UpdateTargets godoc
// @Summary Replace the daily targets
// @Tags NutritionPlans
// @Router /nutrition-plans/{planId}/targets [put]
func (h *NutritionHandler) UpdateTargets(c *gin.Context) {
	var req TargetsRequest
	handleMutation(c, h.logger, "planId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.NutritionPlan, error) {
		return h.nutritionService.UpdateTargets(c.Request.Context(), who, id, req.Targets, req.Notes)
	})
}

// DeletePlan godoc
// @Summary Delete a nutrition plan
// @Tags NutritionPlans
// @Success 204
// @Router /nutrition-plans/{planId} [delete]
func (h *NutritionHandler) DeletePlan(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	if err := h.nutritionService.DeletePlan(c.Request.Context(), who, id); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
