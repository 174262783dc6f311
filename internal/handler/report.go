package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dosewise/dosewise/internal/service"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportHandler implements the adherence report endpoint
type ReportHandler struct {
	service *service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// AdherenceReportRequest selects the profile and date range. Dates
// default to the last 30 days.
type AdherenceReportRequest struct {
	ProfileID string `json:"profile_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// Adherence generates and returns the adherence report PDF
func (h *ReportHandler) Adherence(c *gin.Context) {
	var req AdherenceReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err)
		return
	}

	if req.ProfileID == "" {
		req.ProfileID = model.DefaultProfileID
	}
	if req.To == "" {
		req.To = time.Now().Format("2006-01-02")
	}
	if req.From == "" {
		req.From = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}

	report, err := h.service.GenerateAdherenceReport(c.Request.Context(), req.ProfileID, req.From, req.To)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to generate report", err)
		return
	}

	filename := fmt.Sprintf("adherence-%s-%s.pdf", req.From, req.To)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", report)
}
