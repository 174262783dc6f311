package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dosewise/dosewise/internal/repository"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Known vital measurement types.
var vitalTypes = map[string]bool{
	"blood_pressure": true,
	"heart_rate":     true,
	"glucose":        true,
	"weight":         true,
	"temperature":    true,
	"oxygen":         true,
}

// Known mood values.
var moodValues = map[string]bool{
	"great": true,
	"good":  true,
	"okay":  true,
	"low":   true,
	"bad":   true,
}

// HealthDataService handles vitals, appointments and mood tracking
type HealthDataService struct {
	repo   *repository.HealthDataRepository
	logger *zap.Logger
}

// NewHealthDataService creates a new HealthDataService
func NewHealthDataService(repo *repository.HealthDataRepository, logger *zap.Logger) *HealthDataService {
	return &HealthDataService{
		repo:   repo,
		logger: logger,
	}
}

// AddVital validates and stores a vital reading
func (s *HealthDataService) AddVital(ctx context.Context, v *model.Vital) error {
	if v.ProfileID == "" {
		return fmt.Errorf("profile ID is required")
	}
	if !vitalTypes[v.Type] {
		return fmt.Errorf("unknown vital type: %q", v.Type)
	}
	if v.Type == "blood_pressure" && v.Secondary == nil {
		return fmt.Errorf("blood pressure readings require a diastolic value")
	}

	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.RecordedAt.IsZero() {
		v.RecordedAt = time.Now()
	}

	if err := s.repo.AddVital(ctx, *v); err != nil {
		s.logger.Error("failed to add vital", zap.Error(err), zap.String("profile_id", v.ProfileID))
		return fmt.Errorf("failed to add vital: %w", err)
	}

	s.logger.Info("vital recorded",
		zap.String("profile_id", v.ProfileID),
		zap.String("type", v.Type),
	)
	return nil
}

// ListVitals returns a profile's vital readings
func (s *HealthDataService) ListVitals(ctx context.Context, profileID string) ([]model.Vital, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile ID is required")
	}
	return s.repo.ListVitals(profileID), nil
}

// DeleteVital removes a vital reading
func (s *HealthDataService) DeleteVital(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("vital ID is required")
	}
	if err := s.repo.DeleteVital(ctx, id); err != nil {
		return fmt.Errorf("failed to delete vital: %w", err)
	}
	return nil
}

// AddAppointment validates and stores an appointment
func (s *HealthDataService) AddAppointment(ctx context.Context, a *model.Appointment) error {
	if a.ProfileID == "" {
		return fmt.Errorf("profile ID is required")
	}
	if a.Title == "" {
		return fmt.Errorf("appointment title is required")
	}
	if _, err := time.Parse("2006-01-02", a.Date); err != nil {
		return fmt.Errorf("invalid appointment date %q", a.Date)
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now()

	if err := s.repo.AddAppointment(ctx, *a); err != nil {
		s.logger.Error("failed to add appointment", zap.Error(err), zap.String("profile_id", a.ProfileID))
		return fmt.Errorf("failed to add appointment: %w", err)
	}

	s.logger.Info("appointment added",
		zap.String("profile_id", a.ProfileID),
		zap.String("date", a.Date),
	)
	return nil
}

// ListAppointments returns a profile's appointments
func (s *HealthDataService) ListAppointments(ctx context.Context, profileID string) ([]model.Appointment, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile ID is required")
	}
	return s.repo.ListAppointments(profileID), nil
}

// DeleteAppointment removes an appointment
func (s *HealthDataService) DeleteAppointment(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("appointment ID is required")
	}
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// AddMood validates and stores a mood entry
func (s *HealthDataService) AddMood(ctx context.Context, m *model.MoodEntry) error {
	if m.ProfileID == "" {
		return fmt.Errorf("profile ID is required")
	}
	if !moodValues[m.Mood] {
		return fmt.Errorf("unknown mood value: %q", m.Mood)
	}

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now()
	}
	if m.Date == "" {
		m.Date = m.RecordedAt.Format("2006-01-02")
	}

	if err := s.repo.AddMood(ctx, *m); err != nil {
		s.logger.Error("failed to add mood entry", zap.Error(err), zap.String("profile_id", m.ProfileID))
		return fmt.Errorf("failed to add mood entry: %w", err)
	}

	s.logger.Info("mood recorded",
		zap.String("profile_id", m.ProfileID),
		zap.String("mood", m.Mood),
	)
	return nil
}

// ListMoods returns a profile's mood entries
func (s *HealthDataService) ListMoods(ctx context.Context, profileID string) ([]model.MoodEntry, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile ID is required")
	}
	return s.repo.ListMoods(profileID), nil
}

// DeleteMood removes a mood entry
func (s *HealthDataService) DeleteMood(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("mood ID is required")
	}
	if err := s.repo.DeleteMood(ctx, id); err != nil {
		return fmt.Errorf("failed to delete mood entry: %w", err)
	}
	return nil
}
