package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cnc-voile/cantine-service/internal/models"
	"github.com/cnc-voile/cantine-service/internal/services"
	"github.com/cnc-voile/cantine-service/internal/utils"
)

// BaseHandler carries the helpers shared by every handler.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs a handler entry with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c, h.logger).Info(msg, args...)
}

// parseIDParam reads a positive integer path parameter. On failure it
// writes the error response and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		h.respondError(c, http.StatusBadRequest, "invalid "+name+" parameter")
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, models.ErrorResponse{Success: false, Error: message})
}

func (h *BaseHandler) respondOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: message})
}

// handleServiceError maps service sentinel errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrPastDate),
		errors.Is(err, services.ErrSelfDelete):
		h.respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		h.respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		h.respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		h.respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrShortIDExhausted):
		h.respondError(c, http.StatusConflict, err.Error())
	default:
		utils.LoggerFromContext(c, h.logger).Error("internal error", "error", err)
		h.respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// GetUserFromContext returns the authenticated user set by the auth
// middleware.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	user, ok := GetUserFromContext(c)
	if !ok {
		return 0, false
	}
	return user.ID, true
}
