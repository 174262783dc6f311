package handler

import (
	"net/http"

	"github.com/dosewise/dosewise/internal/service"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler implements profile API endpoints
type ProfileHandler struct {
	service *service.ProfileService
	logger  *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger,
	}
}

// List returns all profiles
func (h *ProfileHandler) List(c *gin.Context) {
	profiles, err := h.service.ListProfiles(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list profiles", err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// Create adds a new profile
func (h *ProfileHandler) Create(c *gin.Context) {
	var profile model.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if err := h.service.AddProfile(c.Request.Context(), &profile); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to add profile", err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// Update modifies an existing profile
func (h *ProfileHandler) Update(c *gin.Context) {
	var profile model.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), &profile); err != nil {
		errorJSON(c, http.StatusNotFound, "NOT_FOUND", "Failed to update profile", err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Delete removes a profile
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to delete profile", err)
		return
	}
	c.Status(http.StatusNoContent)
}
