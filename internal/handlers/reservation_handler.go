package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cnc-voile/cantine-service/internal/services"
	"github.com/cnc-voile/cantine-service/internal/utils"
)

type ReservationHandler struct {
	BaseHandler
	service services.ReservationService
}

func NewReservationHandler(service services.ReservationService, logger utils.Logger) *ReservationHandler {
	return &ReservationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetUserReservations returns the caller's own bookings for the week
// starting at start_date.
func (h *ReservationHandler) GetUserReservations(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	weekStart, ok := h.parseWeekStart(c)
	if !ok {
		return
	}

	resp, err := h.service.ListForUserWeek(c.Request.Context(), userID, weekStart)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"reservations": resp.Reservations,
		"user_status":  resp.UserStatus,
	})
}

// ToggleReservation books or cancels the caller's own meal for a date.
func (h *ReservationHandler) ToggleReservation(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req services.ToggleReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	h.LogRequest(c, "Toggling reservation", "user_id", userID, "date", req.Date, "reserved", req.Reserved)

	if err := h.service.Toggle(c.Request.Context(), userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "")
}

// UpdateOwnStatus flips the volunteer flag on the caller's reservation
// for a date.
func (h *ReservationHandler) UpdateOwnStatus(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		h.respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req services.UpdateOwnStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateOwnStatus(c.Request.Context(), userID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "")
}

// GetWeekReservations returns every booking of the week for planning.
func (h *ReservationHandler) GetWeekReservations(c *gin.Context) {
	weekStart, ok := h.parseWeekStart(c)
	if !ok {
		return
	}

	resp, err := h.service.ListForWeek(c.Request.Context(), weekStart)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"reservations": resp.Reservations,
	})
}

// CreateReservation is the manager-side upsert for any user.
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	actorID, _ := GetUserIDFromContext(c)

	var req services.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	h.LogRequest(c, "Creating reservation", "actor_id", actorID, "user_id", req.UserID, "date", req.Date)

	if err := h.service.CreateOrUpdate(c.Request.Context(), actorID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "")
}

// UpdateReservationStatus flips the volunteer flag on a reservation
// located by identifier.
func (h *ReservationHandler) UpdateReservationStatus(c *gin.Context) {
	actorID, _ := GetUserIDFromContext(c)

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), actorID, id, req.Benevole); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "")
}

// DeleteReservation removes a reservation by identifier.
func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	actorID, _ := GetUserIDFromContext(c)

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting reservation", "actor_id", actorID, "reservation_id", id)

	if err := h.service.Delete(c.Request.Context(), actorID, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "")
}

// parseWeekStart reads the start_date query parameter (YYYY-MM-DD).
func (h *ReservationHandler) parseWeekStart(c *gin.Context) (time.Time, bool) {
	raw := c.Query("start_date")
	if raw == "" {
		h.respondError(c, http.StatusBadRequest, "start_date is required")
		return time.Time{}, false
	}

	weekStart, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return time.Time{}, false
	}

	return weekStart, true
}
