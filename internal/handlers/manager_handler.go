package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cnc-voile/cantine-service/internal/services"
	"github.com/cnc-voile/cantine-service/internal/utils"
)

// ManagerHandler serves the reporting, extra-meal and settings endpoints.
type ManagerHandler struct {
	BaseHandler
	stats    services.StatsService
	export   services.ExportService
	extra    services.ExtraService
	settings services.SettingsService
}

func NewManagerHandler(stats services.StatsService, export services.ExportService, extra services.ExtraService, settings services.SettingsService, logger utils.Logger) *ManagerHandler {
	return &ManagerHandler{
		BaseHandler: NewBaseHandler(logger),
		stats:       stats,
		export:      export,
		extra:       extra,
		settings:    settings,
	}
}

// GetStats returns aggregated reservation statistics over a date range.
// Range bounds use the DD/MM/YYYY format of the reporting screens.
func (h *ManagerHandler) GetStats(c *gin.Context) {
	from, to, ok := h.parseReportRange(c)
	if !ok {
		return
	}

	stats, err := h.stats.Aggregate(c.Request.Context(), from, to)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// ExportReservations streams the report in the requested format.
func (h *ManagerHandler) ExportReservations(c *gin.Context) {
	from, to, ok := h.parseReportRange(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", services.FormatCSV)

	h.LogRequest(c, "Exporting reservations", "format", format)

	file, err := h.export.Export(c.Request.Context(), format, from, to)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// GetExtras returns the extra meal counts for one date.
func (h *ManagerHandler) GetExtras(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		h.respondError(c, http.StatusBadRequest, "date is required")
		return
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	extras, err := h.extra.Get(c.Request.Context(), date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"extras":  extras,
	})
}

// SetExtras overwrites the extra meal counts for one date.
func (h *ManagerHandler) SetExtras(c *gin.Context) {
	actorID, _ := GetUserIDFromContext(c)

	var req services.SetExtrasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.extra.Set(c.Request.Context(), actorID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, "")
}

// GetSettings returns the settings document. Readable by any
// authenticated user.
func (h *ManagerHandler) GetSettings(c *gin.Context) {
	doc, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": doc,
	})
}

// UpdateSettings merges the provided keys over the stored document.
func (h *ManagerHandler) UpdateSettings(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.settings.Update(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"settings": doc,
	})
}

// parseReportRange reads optional start_date/end_date query parameters
// in DD/MM/YYYY format.
func (h *ManagerHandler) parseReportRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	var from, to *time.Time

	if raw := c.Query("start_date"); raw != "" {
		d, err := time.Parse("02/01/2006", raw)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, "start_date must be DD/MM/YYYY")
			return nil, nil, false
		}
		from = &d
	}

	if raw := c.Query("end_date"); raw != "" {
		d, err := time.Parse("02/01/2006", raw)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, "end_date must be DD/MM/YYYY")
			return nil, nil, false
		}
		to = &d
	}

	return from, to, true
}
