package handler

import (
	"net/http"

	"github.com/dosewise/dosewise/internal/ai"
	"github.com/dosewise/dosewise/internal/service"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssistHandler implements the AI-assisted endpoints. Registered only
// when an assistant is configured.
type AssistHandler struct {
	assistant *ai.Assistant
	meds      *service.MedicationService
	logger    *zap.Logger
}

// NewAssistHandler creates a new AssistHandler
func NewAssistHandler(assistant *ai.Assistant, meds *service.MedicationService, logger *zap.Logger) *AssistHandler {
	return &AssistHandler{
		assistant: assistant,
		meds:      meds,
		logger:    logger,
	}
}

// ParseScheduleRequest carries the free-text medication description.
type ParseScheduleRequest struct {
	Input string `json:"input" binding:"required"`
}

// ParseSchedule turns a natural-language description into a medication
// form draft
func (h *AssistHandler) ParseSchedule(c *gin.Context) {
	var req ParseScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	parsed, err := h.assistant.ParseSchedule(c.Request.Context(), req.Input)
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "AI_ERROR", "Failed to parse schedule", err)
		return
	}

	c.JSON(http.StatusOK, parsed)
}

// InteractionsRequest names the profile whose medications to check.
type InteractionsRequest struct {
	ProfileID string `json:"profile_id"`
}

// InteractionsResponse carries the advisory summary text.
type InteractionsResponse struct {
	Summary string `json:"summary"`
}

// CheckInteractions returns an advisory interaction summary for a
// profile's medications
func (h *AssistHandler) CheckInteractions(c *gin.Context) {
	var req InteractionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}
	if req.ProfileID == "" {
		req.ProfileID = model.DefaultProfileID
	}

	meds, err := h.meds.ListMedications(c.Request.Context(), req.ProfileID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list medications", err)
		return
	}

	summary, err := h.assistant.CheckInteractions(c.Request.Context(), meds)
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "AI_ERROR", "Failed to check interactions", err)
		return
	}

	c.JSON(http.StatusOK, InteractionsResponse{Summary: summary})
}

// PharmaciesRequest carries the free-text location.
type PharmaciesRequest struct {
	Location string `json:"location" binding:"required"`
}

// SuggestPharmacies returns pharmacies near a free-text location
func (h *AssistHandler) SuggestPharmacies(c *gin.Context) {
	var req PharmaciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	pharmacies, err := h.assistant.SuggestPharmacies(c.Request.Context(), req.Location)
	if err != nil {
		errorJSON(c, http.StatusBadGateway, "AI_ERROR", "Failed to suggest pharmacies", err)
		return
	}

	c.JSON(http.StatusOK, pharmacies)
}
