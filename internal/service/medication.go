package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dosewise/dosewise/internal/repository"
	"github.com/dosewise/dosewise/internal/schedule"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MedicationService handles medication management business logic
type MedicationService struct {
	repo   *repository.MedicationRepository
	logger *zap.Logger
}

// NewMedicationService creates a new MedicationService
func NewMedicationService(repo *repository.MedicationRepository, logger *zap.Logger) *MedicationService {
	return &MedicationService{
		repo:   repo,
		logger: logger,
	}
}

// AddMedication validates and stores a new medication. INTERVAL schedules
// get their time-slot cache expanded here; AS_NEEDED schedules carry no
// slots at all. An empty profile assignment falls to the default profile.
func (s *MedicationService) AddMedication(ctx context.Context, med *model.Medication) error {
	if err := s.normalize(med); err != nil {
		return err
	}

	if med.ID == "" {
		med.ID = uuid.New().String()
	}

	now := time.Now()
	med.CreatedAt = now
	med.UpdatedAt = now

	if err := s.repo.Create(ctx, *med); err != nil {
		s.logger.Error("failed to add medication",
			zap.Error(err),
			zap.String("profile_id", med.ProfileID),
			zap.String("medication_name", med.Name),
		)
		return fmt.Errorf("failed to add medication: %w", err)
	}

	s.logger.Info("medication added successfully",
		zap.String("medication_id", med.ID),
		zap.String("profile_id", med.ProfileID),
		zap.String("name", med.Name),
		zap.String("frequency", string(med.Frequency)),
	)

	return nil
}

// ListMedications retrieves all medications for a profile
func (s *MedicationService) ListMedications(ctx context.Context, profileID string) ([]model.Medication, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile ID is required")
	}

	medications := s.repo.ListByProfile(profileID)

	s.logger.Debug("medications listed",
		zap.String("profile_id", profileID),
		zap.Int("count", len(medications)),
	)

	return medications, nil
}

// GetMedication retrieves a medication by ID
func (s *MedicationService) GetMedication(ctx context.Context, medID string) (*model.Medication, error) {
	if medID == "" {
		return nil, fmt.Errorf("medication ID is required")
	}

	med, err := s.repo.Get(medID)
	if err != nil {
		return nil, fmt.Errorf("medication not found: %w", err)
	}
	return med, nil
}

// UpdateMedication updates an existing medication, preserving its identity
// and ownership and re-expanding the interval slot cache.
func (s *MedicationService) UpdateMedication(ctx context.Context, medID string, updates *model.Medication) error {
	if medID == "" {
		return fmt.Errorf("medication ID is required")
	}

	existing, err := s.repo.Get(medID)
	if err != nil {
		s.logger.Error("failed to find medication for update",
			zap.Error(err),
			zap.String("medication_id", medID),
		)
		return fmt.Errorf("medication not found: %w", err)
	}

	updates.ID = existing.ID
	if updates.ProfileID == "" {
		updates.ProfileID = existing.ProfileID
	}
	updates.CreatedAt = existing.CreatedAt

	if err := s.normalize(updates); err != nil {
		return err
	}
	updates.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, *updates); err != nil {
		s.logger.Error("failed to update medication",
			zap.Error(err),
			zap.String("medication_id", medID),
		)
		return fmt.Errorf("failed to update medication: %w", err)
	}

	s.logger.Info("medication updated successfully",
		zap.String("medication_id", medID),
		zap.String("name", updates.Name),
	)

	return nil
}

// DeleteMedication deletes a medication. Existing log entries keep their
// dangling reference by design.
func (s *MedicationService) DeleteMedication(ctx context.Context, medID string) error {
	if medID == "" {
		return fmt.Errorf("medication ID is required")
	}

	if err := s.repo.Delete(ctx, medID); err != nil {
		s.logger.Error("failed to delete medication",
			zap.Error(err),
			zap.String("medication_id", medID),
		)
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	s.logger.Info("medication deleted successfully",
		zap.String("medication_id", medID),
	)

	return nil
}

// Refill sets the stock to an explicit new total and stamps the refill
// date with today.
func (s *MedicationService) Refill(ctx context.Context, medID string, newTotal int) (*model.Medication, error) {
	if medID == "" {
		return nil, fmt.Errorf("medication ID is required")
	}
	if newTotal < 0 {
		return nil, fmt.Errorf("refill total must not be negative")
	}

	med, err := s.repo.Get(medID)
	if err != nil {
		return nil, fmt.Errorf("medication not found: %w", err)
	}

	today := schedule.DateString(time.Now())
	med.Stock = newTotal
	med.RefillDate = &today
	med.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, *med); err != nil {
		s.logger.Error("failed to refill medication",
			zap.Error(err),
			zap.String("medication_id", medID),
		)
		return nil, fmt.Errorf("failed to refill medication: %w", err)
	}

	s.logger.Info("medication refilled",
		zap.String("medication_id", medID),
		zap.Int("stock", newTotal),
	)

	return med, nil
}

// normalize validates the medication and derives frequency-dependent
// fields. Times for INTERVAL medications are always recomputed from
// (interval, start time), never taken from the caller.
func (s *MedicationService) normalize(med *model.Medication) error {
	if med.Name == "" {
		return fmt.Errorf("medication name is required")
	}
	if med.Dosage == "" {
		return fmt.Errorf("medication dosage is required")
	}
	if !med.Frequency.Valid() {
		return fmt.Errorf("invalid frequency: %q", med.Frequency)
	}
	if med.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}

	if med.ProfileID == "" {
		med.ProfileID = model.DefaultProfileID
	}
	med.Sound = normalizeOptionalSound(med.Sound)

	switch med.Frequency {
	case model.FrequencyAsNeeded:
		med.Times = nil
		med.DaysOfWeek = nil
		med.IntervalMinutes = 0
		med.StartTime = ""

	case model.FrequencyInterval:
		if med.IntervalMinutes <= 0 {
			return fmt.Errorf("interval minutes must be positive")
		}
		if !schedule.ValidSlot(med.StartTime) {
			return fmt.Errorf("invalid start time %q", med.StartTime)
		}
		med.Times = schedule.ExpandInterval(med.StartTime, med.IntervalMinutes)
		med.DaysOfWeek = nil

	case model.FrequencyDaily, model.FrequencyWeekly:
		if len(med.Times) == 0 {
			return fmt.Errorf("at least one time slot is required")
		}
		for _, slot := range med.Times {
			if !schedule.ValidSlot(slot) {
				return fmt.Errorf("invalid time slot %q", slot)
			}
		}
		schedule.SortSlots(med.Times)
		med.IntervalMinutes = 0
		med.StartTime = ""
		if med.Frequency == model.FrequencyDaily {
			med.DaysOfWeek = nil
		}
		for _, d := range med.DaysOfWeek {
			if d < time.Sunday || d > time.Saturday {
				return fmt.Errorf("invalid day of week %d", d)
			}
		}
	}

	return nil
}

// normalizeOptionalSound keeps an unset sound unset (so profile fallback
// applies) but coerces junk to the default.
func normalizeOptionalSound(s model.Sound) model.Sound {
	if s == "" {
		return ""
	}
	return model.NormalizeSound(s)
}
