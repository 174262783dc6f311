package handler

import (
	"net/http"

	"github.com/dosewise/dosewise/internal/service"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MedicationHandler implements medication API endpoints
type MedicationHandler struct {
	service *service.MedicationService
	logger  *zap.Logger
}

// NewMedicationHandler creates a new MedicationHandler
func NewMedicationHandler(service *service.MedicationService, logger *zap.Logger) *MedicationHandler {
	return &MedicationHandler{
		service: service,
		logger:  logger,
	}
}

// List returns all medications for a profile
func (h *MedicationHandler) List(c *gin.Context) {
	profileID := c.Query("profile_id")
	if profileID == "" {
		profileID = model.DefaultProfileID
	}

	medications, err := h.service.ListMedications(c.Request.Context(), profileID)
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list medications", err)
		return
	}

	c.JSON(http.StatusOK, medications)
}

// Get returns one medication
func (h *MedicationHandler) Get(c *gin.Context) {
	med, err := h.service.GetMedication(c.Request.Context(), c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Medication not found", err)
		return
	}
	c.JSON(http.StatusOK, med)
}

// Create adds a new medication
func (h *MedicationHandler) Create(c *gin.Context) {
	var med model.Medication
	if err := c.ShouldBindJSON(&med); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if err := h.service.AddMedication(c.Request.Context(), &med); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to add medication", err)
		return
	}

	c.JSON(http.StatusCreated, med)
}

// Update modifies an existing medication
func (h *MedicationHandler) Update(c *gin.Context) {
	var med model.Medication
	if err := c.ShouldBindJSON(&med); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if err := h.service.UpdateMedication(c.Request.Context(), c.Param("id"), &med); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to update medication", err)
		return
	}

	c.JSON(http.StatusOK, med)
}

// Delete removes a medication
func (h *MedicationHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteMedication(c.Request.Context(), c.Param("id")); err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Failed to delete medication", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RefillRequest sets a medication's stock to a new total.
type RefillRequest struct {
	NewTotal int `json:"new_total" binding:"required"`
}

// Refill sets stock to an explicit new total
func (h *MedicationHandler) Refill(c *gin.Context) {
	var req RefillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	med, err := h.service.Refill(c.Request.Context(), c.Param("id"), req.NewTotal)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to refill medication", err)
		return
	}

	c.JSON(http.StatusOK, med)
}
