package handler

import (
	"net/http"

	"github.com/dosewise/dosewise/internal/service"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthDataHandler implements vitals, appointments and mood endpoints
type HealthDataHandler struct {
	service *service.HealthDataService
	logger  *zap.Logger
}

// NewHealthDataHandler creates a new HealthDataHandler
func NewHealthDataHandler(service *service.HealthDataService, logger *zap.Logger) *HealthDataHandler {
	return &HealthDataHandler{
		service: service,
		logger:  logger,
	}
}

func profileIDQuery(c *gin.Context) string {
	profileID := c.Query("profile_id")
	if profileID == "" {
		return model.DefaultProfileID
	}
	return profileID
}

// CreateVital records a vital reading
func (h *HealthDataHandler) CreateVital(c *gin.Context) {
	var vital model.Vital
	if err := c.ShouldBindJSON(&vital); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if err := h.service.AddVital(c.Request.Context(), &vital); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to add vital", err)
		return
	}

	c.JSON(http.StatusCreated, vital)
}

// ListVitals returns a profile's vital readings
func (h *HealthDataHandler) ListVitals(c *gin.Context) {
	vitals, err := h.service.ListVitals(c.Request.Context(), profileIDQuery(c))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list vitals", err)
		return
	}
	c.JSON(http.StatusOK, vitals)
}

// DeleteVital removes a vital reading
func (h *HealthDataHandler) DeleteVital(c *gin.Context) {
	if err := h.service.DeleteVital(c.Request.Context(), c.Param("id")); err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Failed to delete vital", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateAppointment records an appointment
func (h *HealthDataHandler) CreateAppointment(c *gin.Context) {
	var appointment model.Appointment
	if err := c.ShouldBindJSON(&appointment); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if err := h.service.AddAppointment(c.Request.Context(), &appointment); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to add appointment", err)
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// ListAppointments returns a profile's appointments
func (h *HealthDataHandler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.ListAppointments(c.Request.Context(), profileIDQuery(c))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list appointments", err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// DeleteAppointment removes an appointment
func (h *HealthDataHandler) DeleteAppointment(c *gin.Context) {
	if err := h.service.DeleteAppointment(c.Request.Context(), c.Param("id")); err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Failed to delete appointment", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateMood records a mood entry
func (h *HealthDataHandler) CreateMood(c *gin.Context) {
	var mood model.MoodEntry
	if err := c.ShouldBindJSON(&mood); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if err := h.service.AddMood(c.Request.Context(), &mood); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to add mood entry", err)
		return
	}

	c.JSON(http.StatusCreated, mood)
}

// ListMoods returns a profile's mood entries
func (h *HealthDataHandler) ListMoods(c *gin.Context) {
	moods, err := h.service.ListMoods(c.Request.Context(), profileIDQuery(c))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list moods", err)
		return
	}
	c.JSON(http.StatusOK, moods)
}

// DeleteMood removes a mood entry
func (h *HealthDataHandler) DeleteMood(c *gin.Context) {
	if err := h.service.DeleteMood(c.Request.Context(), c.Param("id")); err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Failed to delete mood entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}
