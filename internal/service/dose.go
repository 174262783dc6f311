package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dosewise/dosewise/internal/metrics"
	"github.com/dosewise/dosewise/internal/notify"
	"github.com/dosewise/dosewise/internal/repository"
	"github.com/dosewise/dosewise/internal/schedule"
	"github.com/dosewise/dosewise/internal/snooze"
	"github.com/dosewise/dosewise/pkg/model"
	"go.uber.org/zap"
)

// DoseService handles dose logging, snoozing and next-dose resolution. It
// owns the cross-cutting stock invariant: stock is a non-negative integer,
// adjusted exactly once per status transition, with a low-stock alert
// emitted only when the threshold is crossed downward.
type DoseService struct {
	meds     *repository.MedicationRepository
	logs     *repository.LogRepository
	snoozes  *snooze.Registry
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewDoseService creates a new DoseService
func NewDoseService(
	meds *repository.MedicationRepository,
	logs *repository.LogRepository,
	snoozes *snooze.Registry,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *DoseService {
	return &DoseService{
		meds:     meds,
		logs:     logs,
		snoozes:  snoozes,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// LogDose records a dose outcome for today.
//
// Re-logging the same slot with the same status only refreshes the
// timestamp. A status change inverts the stock adjustment exactly once:
// SKIPPED to TAKEN consumes one unit (floored at zero), TAKEN to SKIPPED
// restores one. A new TAKEN entry consumes one unit. Any successful log
// cancels every pending snooze for the medication. For AS_NEEDED
// medications the wall-clock time substitutes for the scheduled slot.
func (s *DoseService) LogDose(ctx context.Context, medicationID string, status model.DoseStatus, scheduledTime string) (*model.LogEntry, *model.Medication, error) {
	if medicationID == "" {
		return nil, nil, fmt.Errorf("medication ID is required")
	}
	if !status.Valid() {
		return nil, nil, fmt.Errorf("invalid dose status: %q", status)
	}

	med, err := s.meds.Get(medicationID)
	if err != nil {
		return nil, nil, fmt.Errorf("medication not found: %w", err)
	}

	now := s.now()
	if scheduledTime == "" {
		if med.Frequency != model.FrequencyAsNeeded {
			return nil, nil, fmt.Errorf("scheduled time is required")
		}
		scheduledTime = schedule.ClockTime(now)
	}
	if !schedule.ValidSlot(scheduledTime) {
		return nil, nil, fmt.Errorf("invalid scheduled time %q", scheduledTime)
	}

	entry := model.LogEntry{
		MedicationID:  medicationID,
		ProfileID:     med.ProfileID,
		Status:        status,
		ScheduledTime: scheduledTime,
		Date:          schedule.DateString(now),
		Timestamp:     now,
	}

	prev, err := s.logs.Upsert(ctx, entry)
	if err != nil {
		s.logger.Error("failed to record dose",
			zap.Error(err),
			zap.String("medication_id", medicationID),
		)
		return nil, nil, fmt.Errorf("failed to record dose: %w", err)
	}

	delta := stockDelta(prev, status)
	if delta != 0 {
		before := med.Stock
		med.Stock += delta
		if med.Stock < 0 {
			med.Stock = 0
		}
		med.UpdatedAt = now

		if err := s.meds.Update(ctx, *med); err != nil {
			s.logger.Error("failed to adjust stock",
				zap.Error(err),
				zap.String("medication_id", medicationID),
			)
			return nil, nil, fmt.Errorf("failed to adjust stock: %w", err)
		}

		if delta < 0 && before > med.LowStockAt && med.Stock <= med.LowStockAt {
			s.emitLowStock(ctx, med)
		}
	}

	// A successful log of any slot cancels all pending snoozes for the
	// medication, not just the logged slot.
	s.snoozes.ClearMedication(medicationID)

	if s.metrics != nil {
		s.metrics.DosesLogged.WithLabelValues(string(status)).Inc()
	}

	s.logger.Info("dose logged",
		zap.String("medication_id", medicationID),
		zap.String("profile_id", med.ProfileID),
		zap.String("status", string(status)),
		zap.String("scheduled_time", scheduledTime),
		zap.Int("stock", med.Stock),
	)

	return &entry, med, nil
}

// Snooze suppresses the reminder for one slot until now + minutes.
func (s *DoseService) Snooze(ctx context.Context, medicationID, scheduledTime string, minutes int) error {
	if medicationID == "" {
		return fmt.Errorf("medication ID is required")
	}
	if minutes <= 0 {
		return fmt.Errorf("snooze minutes must be positive")
	}
	if !schedule.ValidSlot(scheduledTime) {
		return fmt.Errorf("invalid scheduled time %q", scheduledTime)
	}

	if _, err := s.meds.Get(medicationID); err != nil {
		return fmt.Errorf("medication not found: %w", err)
	}

	wakeUp := s.now().Add(time.Duration(minutes) * time.Minute)
	s.snoozes.Set(medicationID, scheduledTime, wakeUp)

	s.logger.Info("dose snoozed",
		zap.String("medication_id", medicationID),
		zap.String("scheduled_time", scheduledTime),
		zap.Int("minutes", minutes),
	)

	return nil
}

// NextDose resolves the slot a profile should be prompted with next, or
// nil when nothing is due within the grace window.
func (s *DoseService) NextDose(ctx context.Context, profileID string) (*schedule.NextDose, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile ID is required")
	}

	meds := s.meds.ListByProfile(profileID)
	return schedule.Next(meds, s.logs.Exists, s.now()), nil
}

// ListDoses returns a profile's log entries, optionally for one day.
func (s *DoseService) ListDoses(ctx context.Context, profileID, date string) ([]model.LogEntry, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile ID is required")
	}
	return s.logs.ListByProfile(profileID, date), nil
}

// emitLowStock sends the low-stock alert synchronously with the logging
// action that crossed the threshold.
func (s *DoseService) emitLowStock(ctx context.Context, med *model.Medication) {
	body := fmt.Sprintf("%s is running low: %d left (threshold %d)", med.Name, med.Stock, med.LowStockAt)
	if err := s.notifier.Notify(ctx, "Low stock", body, model.SoundDefault); err != nil {
		s.logger.Warn("low stock alert delivery failed",
			zap.Error(err),
			zap.String("medication_id", med.ID),
		)
		return
	}

	if s.metrics != nil {
		s.metrics.LowStockAlerts.Inc()
	}
	s.logger.Info("low stock alert emitted",
		zap.String("medication_id", med.ID),
		zap.Int("stock", med.Stock),
	)
}

// stockDelta computes the stock adjustment for a log transition. No
// previous entry means a fresh log; an unchanged status means a timestamp
// refresh with no side effect.
func stockDelta(prev *model.DoseStatus, status model.DoseStatus) int {
	switch {
	case prev == nil && status == model.DoseTaken:
		return -1
	case prev != nil && *prev != status && status == model.DoseTaken:
		return -1
	case prev != nil && *prev != status && status == model.DoseSkipped:
		return 1
	}
	return 0
}
