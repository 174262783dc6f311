package handler

import (
	"net/http"

	"github.com/dosewise/dosewise/internal/service"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DoseHandler implements dose logging, snoozing and next-dose endpoints
type DoseHandler struct {
	service *service.DoseService
	logger  *zap.Logger
}

// NewDoseHandler creates a new DoseHandler
func NewDoseHandler(service *service.DoseService, logger *zap.Logger) *DoseHandler {
	return &DoseHandler{
		service: service,
		logger:  logger,
	}
}

// LogDoseRequest records a dose outcome. ScheduledTime may be omitted only
// for AS_NEEDED medications.
type LogDoseRequest struct {
	MedicationID  string           `json:"medication_id" binding:"required"`
	Status        model.DoseStatus `json:"status" binding:"required"`
	ScheduledTime string           `json:"scheduled_time"`
}

// LogDoseResponse returns the written entry and the medication with its
// adjusted stock.
type LogDoseResponse struct {
	Entry      *model.LogEntry   `json:"entry"`
	Medication *model.Medication `json:"medication"`
}

// Log records a dose as taken or skipped
func (h *DoseHandler) Log(c *gin.Context) {
	var req LogDoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	entry, med, err := h.service.LogDose(c.Request.Context(), req.MedicationID, req.Status, req.ScheduledTime)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to log dose", err)
		return
	}

	c.JSON(http.StatusOK, LogDoseResponse{Entry: entry, Medication: med})
}

// SnoozeRequest suppresses one slot's reminder for a number of minutes.
type SnoozeRequest struct {
	MedicationID  string `json:"medication_id" binding:"required"`
	ScheduledTime string `json:"scheduled_time" binding:"required"`
	Minutes       int    `json:"minutes" binding:"required"`
}

// Snooze delays a reminder
func (h *DoseHandler) Snooze(c *gin.Context) {
	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if err := h.service.Snooze(c.Request.Context(), req.MedicationID, req.ScheduledTime, req.Minutes); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to snooze dose", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Next returns the upcoming dose for a profile, or 204 when nothing is
// due within the grace window
func (h *DoseHandler) Next(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		profileID = model.DefaultProfileID
	}

	next, err := h.service.NextDose(c.Request.Context(), profileID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve next dose", err)
		return
	}
	if next == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, next)
}

// List returns a profile's dose log, optionally filtered to one day
func (h *DoseHandler) List(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		profileID = model.DefaultProfileID
	}

	entries, err := h.service.ListDoses(c.Request.Context(), profileID, c.Query("date"))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list doses", err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
