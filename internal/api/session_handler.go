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

type SessionHandler struct {
	sessionService service.SessionService
	logger         *zap.Logger
}

func NewSessionHandler(sessionService service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, logger: logger}
}

// --- DTOs ---

type ExerciseRequest struct {
	ExerciseID string        `json:"exerciseId" binding:"required"`
	Notes      string        `json:"notes"`
	Config     domain.Config `json:"config"`
}

func (r ExerciseRequest) toInput() domain.ExerciseInput {
	return domain.ExerciseInput{ExerciseID: r.ExerciseID, Notes: r.Notes, Config: r.Config}
}

type CreateSessionRequest struct {
	Name           string             `json:"name" binding:"required"`
	Type           domain.SessionType `json:"type" binding:"required"`
	GoalIDs        []string           `json:"goalIds"`
	MuscleFocusIDs []string           `json:"muscleFocusIds"`
	Exercises      []ExerciseRequest  `json:"exercises" binding:"dive"`
}

type UpdateSessionMetaRequest struct {
	Name           string   `json:"name" binding:"required"`
	GoalIDs        []string `json:"goalIds"`
	MuscleFocusIDs []string `json:"muscleFocusIds"`
}

type ReorderExercisesRequest struct {
	ExerciseIDs []string `json:"exerciseIds" binding:"required"`
}

type ReplaceConfigRequest struct {
	Config domain.Config `json:"config"`
}

type ChangeSessionTypeRequest struct {
	Type domain.SessionType `json:"type" binding:"required"`
}

type DuplicateSessionRequest struct {
	Name string `json:"name"`
}

// SessionExerciseResponse is a session exercise with its catalog entry.
type SessionExerciseResponse struct {
	domain.SessionExercise
	Exercise *domain.Exercise `json:"exercise,omitempty"`
	MediaURL string           `json:"mediaUrl,omitempty"`
}

type SessionDetailResponse struct {
	*domain.Session
	Exercises []SessionExerciseResponse `json:"exercises"`
}

func MapSessionDetailToResponse(d *service.SessionDetail) SessionDetailResponse {
	exercises := make([]SessionExerciseResponse, len(d.Exercises))
	for i, ex := range d.Exercises {
		exercises[i] = SessionExerciseResponse{SessionExercise: ex.SessionExercise, Exercise: ex.Exercise, MediaURL: ex.MediaURL}
	}
	return SessionDetailResponse{Session: d.Session, Exercises: exercises}
}

// --- Handler Methods ---

// CreateSession godoc
// @Summary Create a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body CreateSessionRequest true "Session details"
// @Success 201 {object} domain.Session
// @Failure 400 {object} gin.H "Invalid input or incompatible exercise configuration"
// @Failure 404 {object} gin.H "Exercise not found in the catalog"
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	inputs := make([]domain.ExerciseInput, len(req.Exercises))
	for i, ex := range req.Exercises {
		inputs[i] = ex.toInput()
	}
	session, err := h.sessionService.CreateSession(c.Request.Context(), who, domain.SessionMeta{
		Name:           req.Name,
		Type:           req.Type,
		GoalIDs:        req.GoalIDs,
		MuscleFocusIDs: req.MuscleFocusIDs,
	}, inputs)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions godoc
// @Summary List the organization's sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Session
// @Router /sessions [get]
func (h *SessionHandler) ListSessions(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	sessions, err := h.sessionService.ListSessions(c.Request.Context(), who)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// GetSession godoc
// @Summary Get a session with catalog details and media links
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} SessionDetailResponse
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{sessionId} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	detail, err := h.sessionService.GetSessionDetail(c.Request.Context(), who, id)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionDetailToResponse(detail))
}

// UpdateSessionMeta godoc
// @Summary Rename a session and replace its goals and muscle focus
// @Tags Sessions
// @Router /sessions/{sessionId} [put]
func (h *SessionHandler) UpdateSessionMeta(c *gin.Context) {
	var req UpdateSessionMetaRequest
	handleMutation(c, h.logger, "sessionId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.Session, error) {
		return h.sessionService.UpdateSessionMeta(c.Request.Context(), who, id, req.Name, req.GoalIDs, req.MuscleFocusIDs)
	})
}

// AddExercise godoc
// @Summary Append an exercise to a session
// @Tags Sessions
// @Router /sessions/{sessionId}/exercises [post]
func (h *SessionHandler) AddExercise(c *gin.Context) {
	var req ExerciseRequest
	handleMutation(c, h.logger, "sessionId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.Session, error) {
		return h.sessionService.AddExercise(c.Request.Context(), who, id, req.toInput())
	})
}

// RemoveExercise godoc
// @Summary Remove an exercise from a session
// @Tags Sessions
// @Router /sessions/{sessionId}/exercises/{exerciseId} [delete]
func (h *SessionHandler) RemoveExercise(c *gin.Context) {
	handleMutation(c, h.logger, "sessionId", nil, func(who domain.Caller, id primitive.ObjectID) (*domain.Session, error) {
		return h.sessionService.RemoveExercise(c.Request.Context(), who, id, c.Param("exerciseId"))
	})
}

// ReorderExercises godoc
// @Summary Reorder the exercises of a session
// @Tags Sessions
// @Router /sessions/{sessionId}/order [put]
func (h *SessionHandler) ReorderExercises(c *gin.Context) {
	var req ReorderExercisesRequest
	handleMutation(c, h.logger, "sessionId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.Session, error) {
		return h.sessionService.ReorderExercises(c.Request.Context(), who, id, req.ExerciseIDs)
	})
}

// ReplaceExerciseConfig godoc
// @Summary Replace the configuration of one exercise
// @Tags Sessions
// @Router /sessions/{sessionId}/exercises/{exerciseId}/config [put]
func (h *SessionHandler) ReplaceExerciseConfig(c *gin.Context) {
	var req ReplaceConfigRequest
	handleMutation(c, h.logger, "sessionId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.Session, error) {
		return h.sessionService.ReplaceExerciseConfig(c.Request.Context(), who, id, c.Param("exerciseId"), req.Config)
	})
}

// ChangeSessionType godoc
// @Summary Change the type of a session
// @Tags Sessions
// @Failure 409 {object} gin.H "An existing exercise is not allowed in the new type"
// @Router /sessions/{sessionId}/type [put]
func (h *SessionHandler) ChangeSessionType(c *gin.Context) {
	var req ChangeSessionTypeRequest
	handleMutation(c, h.logger, "sessionId", &req, func(who domain.Caller, id primitive.ObjectID) (*domain.Session, error) {
		return h.sessionService.ChangeSessionType(c.Request.Context(), who, id, req.Type)
	})
}

// DuplicateSession godoc
// @Summary Copy a session under new identities
// @Tags Sessions
// @Success 201 {object} domain.Session
// @Router /sessions/{sessionId}/duplicate [post]
func (h *SessionHandler) DuplicateSession(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	var req DuplicateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
	}
	dup, err := h.sessionService.DuplicateSession(c.Request.Context(), who, id, req.Name)
	if err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dup)
}

// DeleteSession godoc
// @Summary Delete a session that no weekly plan schedules
// @Tags Sessions
// @Success 204
// @Failure 409 {object} gin.H "Session is scheduled in a weekly plan"
// @Router /sessions/{sessionId} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "sessionId")
	if !ok {
		return
	}
	if err := h.sessionService.DeleteSession(c.Request.Context(), who, id); err != nil {
		respondWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
