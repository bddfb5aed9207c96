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

type FormHandler struct {
	formService service.FormService
	logger      *zap.Logger
}

func NewFormHandler(formService service.FormService, logger *zap.Logger) *FormHandler {
	return &FormHandler{formService: formService, logger: logger}
}

// --- DTOs ---

type CreateOnboardingRequest struct {
	ClientID   string `json:"clientId" binding:"required"`
	TemplateID string `json:"templateId" binding:"required"`
}

type SubmitFormRequest struct {
	Answers []domain.Answer `json:"answers"`
}

// FormResponseDTO exposes the derived kind next to the stored fields.
type FormResponseDTO struct {
	*domain.FormResponse
	Kind domain.FormKind `json:"kind"`
}

type FormDetailResponse struct {
	FormResponseDTO
	Template *domain.FormTemplate `json:"template"`
}

func MapFormResponseToDTO(r *domain.FormResponse) FormResponseDTO {
	return FormResponseDTO{FormResponse: r, Kind: r.Kind()}
}

func MapFormResponsesToDTO(responses []domain.FormResponse) []FormResponseDTO {
	out := make([]FormResponseDTO, len(responses))
	for i := range responses {
		out[i] = MapFormResponseToDTO(&responses[i])
	}
	return out
}

// --- Handler Methods ---

// CreateOnboarding godoc
// @Summary Send an onboarding questionnaire to a client
// @Tags Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param form body CreateOnboardingRequest true "Client and template"
// @Success 201 {object} FormResponseDTO
// @Failure 404 {object} gin.H "Form template not found"
// @Router /forms/onboarding [post]
func (h *FormHandler) CreateOnboarding(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	var req CreateOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	form, err := h.formService.CreateOnboarding(c.Request.Context(), who, req.ClientID, req.TemplateID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, MapFormResponseToDTO(form))
}

// GetFormResponse godoc
// @Summary Get a form response with its template
// @Tags Forms
// @Success 200 {object} FormDetailResponse
// @Router /forms/{formId} [get]
func (h *FormHandler) GetFormResponse(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "formId")
	if !ok {
		return
	}
	detail, err := h.formService.GetFormResponse(c.Request.Context(), who, id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, FormDetailResponse{FormResponseDTO: MapFormResponseToDTO(detail.Response), Template: detail.Template})
}

// GetPlanFeedback godoc
// @Summary Get the feedback form of a weekly plan
// @Tags Forms
// @Router /weekly-plans/{planId}/feedback [get]
func (h *FormHandler) GetPlanFeedback(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	planID, ok := objectIDParam(c, "planId")
	if !ok {
		return
	}
	form, err := h.formService.GetPlanFeedback(c.Request.Context(), who, planID)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapFormResponseToDTO(form))
}

// ListClientResponses godoc
// @Summary List a client's form responses
// @Tags Forms
// @Router /clients/{clientId}/forms [get]
func (h *FormHandler) ListClientResponses(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	forms, err := h.formService.ListClientResponses(c.Request.Context(), who, c.Param("clientId"))
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapFormResponsesToDTO(forms))
}

// DueFeedback godoc
// @Summary Pending feedback forms whose plan has ended
// @Tags Forms
// @Router /clients/{clientId}/forms/due [get]
func (h *FormHandler) DueFeedback(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	forms, err := h.formService.DueFeedback(c.Request.Context(), who, c.Param("clientId"))
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapFormResponsesToDTO(forms))
}

// SubmitForm godoc
// @Summary Answer a pending form
// @Tags Forms
// @Failure 400 {object} gin.H "Missing or invalid answers"
// @Failure 409 {object} gin.H "Form already submitted"
// @Router /forms/{formId}/submit [post]
func (h *FormHandler) SubmitForm(c *gin.Context) {
	var req SubmitFormRequest
	handleMutation(c, h.logger, "formId", &req, func(who domain.Caller, id primitive.ObjectID) (FormResponseDTO, error) {
		form, err := h.formService.Submit(c.Request.Context(), who, id, req.Answers)
		if err != nil {
			return FormResponseDTO{}, err
		}
		return MapFormResponseToDTO(form), nil
	})
}
