package api

import (
	"alcyxob/coaching-app/internal/domain"
	"alcyxob/coaching-app/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrTypeMismatch):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrCapacity), errors.Is(err, domain.ErrIncompatibleState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondWithError writes err as a JSON error. Internal failures are logged
// and their details are not sent to the client.
func respondWithError(c *gin.Context, logger *zap.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		abortWithError(c, code, "Internal server error")
		return
	}
	abortWithError(c, code, err.Error())
}

// objectIDParam parses a hex ObjectID path parameter.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// intParam parses an integer path parameter. Range checks belong to the
// domain.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return v, true
}

// requestCaller returns the authenticated caller or aborts the request.
func requestCaller(c *gin.Context) (domain.Caller, bool) {
	who, err := callerFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify caller from token.")
		return domain.Caller{}, false
	}
	return who, true
}

// handleMutation runs the common shape of a mutating request: resolve the
// caller and the id path parameter, bind the optional JSON body, call run and
// write its result.
func handleMutation[T any](c *gin.Context, logger *zap.Logger, idParam string, req any, run func(who domain.Caller, id primitive.ObjectID) (T, error)) {
	who, ok := requestCaller(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, idParam)
	if !ok {
		return
	}
	if req != nil {
		if err := c.ShouldBindJSON(req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}
	result, err := run(who, id)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
