package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dosewise/dosewise/internal/ai"
	"github.com/dosewise/dosewise/internal/pdf"
	"github.com/dosewise/dosewise/internal/repository"
	"github.com/dosewise/dosewise/pkg/model"
	"go.uber.org/zap"
)

// ReportService builds adherence report PDFs for one profile and date
// range. The AI narrative is optional: with no assistant configured the
// report is generated without it, and an assistant failure degrades the
// same way.
type ReportService struct {
	profiles  *repository.ProfileRepository
	meds      *repository.MedicationRepository
	logs      *repository.LogRepository
	generator *pdf.Generator
	assistant *ai.Assistant
	logger    *zap.Logger
}

// NewReportService creates a new ReportService. assistant may be nil.
func NewReportService(
	profiles *repository.ProfileRepository,
	meds *repository.MedicationRepository,
	logs *repository.LogRepository,
	generator *pdf.Generator,
	assistant *ai.Assistant,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		profiles:  profiles,
		meds:      meds,
		logs:      logs,
		generator: generator,
		assistant: assistant,
		logger:    logger,
	}
}

// GenerateAdherenceReport renders the PDF for [from, to] inclusive
// (YYYY-MM-DD).
func (s *ReportService) GenerateAdherenceReport(ctx context.Context, profileID, from, to string) ([]byte, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile ID is required")
	}
	if _, err := time.Parse("2006-01-02", from); err != nil {
		return nil, fmt.Errorf("invalid start date %q", from)
	}
	if _, err := time.Parse("2006-01-02", to); err != nil {
		return nil, fmt.Errorf("invalid end date %q", to)
	}
	if from > to {
		return nil, fmt.Errorf("start date is after end date")
	}

	profile, err := s.profiles.Get(profileID)
	if err != nil {
		return nil, fmt.Errorf("profile not found: %w", err)
	}

	logs := s.logs.ListRange(profileID, from, to)
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].Date != logs[j].Date {
			return logs[i].Date < logs[j].Date
		}
		return logs[i].ScheduledTime < logs[j].ScheduledTime
	})

	var taken, skipped int
	for _, entry := range logs {
		if entry.Status == model.DoseTaken {
			taken++
		} else {
			skipped++
		}
	}

	data := &pdf.ReportData{
		ProfileName: profile.Name,
		DateRange:   fmt.Sprintf("%s to %s", from, to),
		Medications: s.meds.ListByProfile(profileID),
		Logs:        logs,
		Taken:       taken,
		Skipped:     skipped,
	}

	if s.assistant != nil {
		summary, err := s.assistant.ReportSummary(ctx, profile.Name, taken, skipped, 0)
		if err != nil {
			s.logger.Warn("report narrative unavailable", zap.Error(err))
		} else {
			data.Summary = summary
		}
	}

	report, err := s.generator.Generate(data)
	if err != nil {
		s.logger.Error("failed to generate adherence report",
			zap.Error(err),
			zap.String("profile_id", profileID),
		)
		return nil, fmt.Errorf("failed to generate adherence report: %w", err)
	}

	s.logger.Info("adherence report generated",
		zap.String("profile_id", profileID),
		zap.Int("entries", len(logs)),
	)

	return report, nil
}
