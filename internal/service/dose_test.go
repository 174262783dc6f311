package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dosewise/dosewise/internal/kvstore"
	"github.com/dosewise/dosewise/internal/repository"
	"github.com/dosewise/dosewise/internal/snooze"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nineAM = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type recordedAlert struct {
	title string
	body  string
}

type captureNotifier struct {
	alerts []recordedAlert
	fail   bool
}

func (n *captureNotifier) Notify(ctx context.Context, title, body string, sound model.Sound) error {
	if n.fail {
		return fmt.Errorf("delivery failed")
	}
	n.alerts = append(n.alerts, recordedAlert{title: title, body: body})
	return nil
}

type doseFixture struct {
	service  *DoseService
	meds     *repository.MedicationRepository
	registry *snooze.Registry
	notifier *captureNotifier
}

func newDoseFixture(t *testing.T) *doseFixture {
	t.Helper()

	store := kvstore.NewMemoryStore()
	logger := zap.NewNop()

	meds := repository.NewMedicationRepository(context.Background(), store, logger)
	logs := repository.NewLogRepository(context.Background(), store, logger)
	registry := snooze.NewRegistry(nil)
	notifier := &captureNotifier{}

	svc := NewDoseService(meds, logs, registry, notifier, nil, logger)
	svc.now = func() time.Time { return nineAM }

	return &doseFixture{
		service:  svc,
		meds:     meds,
		registry: registry,
		notifier: notifier,
	}
}

func (f *doseFixture) addMedication(t *testing.T, med model.Medication) {
	t.Helper()
	require.NoError(t, f.meds.Create(context.Background(), med))
}

func dailyMed(stock, lowStockAt int) model.Medication {
	return model.Medication{
		ID:         "med-1",
		ProfileID:  model.DefaultProfileID,
		Name:       "Aspirin",
		Dosage:     "100mg",
		Frequency:  model.FrequencyDaily,
		Times:      []string{"09:00", "21:00"},
		Stock:      stock,
		LowStockAt: lowStockAt,
	}
}

func TestLogDose_TakenDecrementsStockOnce(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	ctx := context.Background()

	_, med, err := f.service.LogDose(ctx, "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 9, med.Stock)

	// Re-logging the same slot with the same status is a timestamp
	// refresh, not a second consumption.
	_, med, err = f.service.LogDose(ctx, "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 9, med.Stock)
}

func TestLogDose_StatusToggleInvertsStockExactlyOnce(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	ctx := context.Background()

	_, med, err := f.service.LogDose(ctx, "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 9, med.Stock)

	_, med, err = f.service.LogDose(ctx, "med-1", model.DoseSkipped, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 10, med.Stock)

	_, med, err = f.service.LogDose(ctx, "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 9, med.Stock)
}

func TestLogDose_SkippedFirstDoesNotTouchStock(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	_, med, err := f.service.LogDose(context.Background(), "med-1", model.DoseSkipped, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 10, med.Stock)
}

func TestLogDose_StockFloorsAtZero(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(0, 0))

	_, med, err := f.service.LogDose(context.Background(), "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 0, med.Stock)
}

func TestLogDose_LowStockAlertFiresOnlyOnCrossing(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(4, 3))

	ctx := context.Background()

	// 4 -> 3 crosses the threshold.
	_, _, err := f.service.LogDose(ctx, "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)
	require.Len(t, f.notifier.alerts, 1)
	assert.Equal(t, "Low stock", f.notifier.alerts[0].title)

	// 3 -> 2 stays below; no second alert.
	_, _, err = f.service.LogDose(ctx, "med-1", model.DoseTaken, "21:00")
	require.NoError(t, err)
	assert.Len(t, f.notifier.alerts, 1)
}

func TestLogDose_ClearsAllSnoozesForMedication(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	f.registry.Set("med-1", "09:00", nineAM.Add(10*time.Minute))
	f.registry.Set("med-1", "21:00", nineAM.Add(12*time.Hour))

	_, _, err := f.service.LogDose(context.Background(), "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)

	assert.Equal(t, 0, f.registry.Len())
}

func TestLogDose_AsNeededSubstitutesWallClock(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, model.Medication{
		ID:        "prn-1",
		ProfileID: model.DefaultProfileID,
		Name:      "Ibuprofen",
		Dosage:    "200mg",
		Frequency: model.FrequencyAsNeeded,
		Stock:     5,
	})

	entry, _, err := f.service.LogDose(context.Background(), "prn-1", model.DoseTaken, "")
	require.NoError(t, err)
	assert.Equal(t, "09:00", entry.ScheduledTime)
	assert.Equal(t, "2025-06-02", entry.Date)
}

func TestLogDose_ValidationErrors(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	ctx := context.Background()

	tests := []struct {
		name          string
		medicationID  string
		status        model.DoseStatus
		scheduledTime string
		expectedErr   string
	}{
		{
			name:        "empty medication ID",
			status:      model.DoseTaken,
			expectedErr: "medication ID is required",
		},
		{
			name:          "unknown medication",
			medicationID:  "missing",
			status:        model.DoseTaken,
			scheduledTime: "09:00",
			expectedErr:   "medication not found",
		},
		{
			name:          "invalid status",
			medicationID:  "med-1",
			status:        "MAYBE",
			scheduledTime: "09:00",
			expectedErr:   "invalid dose status",
		},
		{
			name:         "missing slot for scheduled medication",
			medicationID: "med-1",
			status:       model.DoseTaken,
			expectedErr:  "scheduled time is required",
		},
		{
			name:          "malformed slot",
			medicationID:  "med-1",
			status:        model.DoseTaken,
			scheduledTime: "9am",
			expectedErr:   "invalid scheduled time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.service.LogDose(ctx, tt.medicationID, tt.status, tt.scheduledTime)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestSnooze_RegistersWakeUp(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	err := f.service.Snooze(context.Background(), "med-1", "09:00", 15)
	require.NoError(t, err)

	assert.True(t, f.registry.IsSnoozed("med-1", "09:00", nineAM.Add(14*time.Minute)))
	assert.False(t, f.registry.IsSnoozed("med-1", "09:00", nineAM.Add(15*time.Minute)))
}

func TestSnooze_ValidationErrors(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	ctx := context.Background()

	assert.Error(t, f.service.Snooze(ctx, "", "09:00", 10))
	assert.Error(t, f.service.Snooze(ctx, "med-1", "09:00", 0))
	assert.Error(t, f.service.Snooze(ctx, "med-1", "09:00", -5))
	assert.Error(t, f.service.Snooze(ctx, "med-1", "bad", 10))
	assert.Error(t, f.service.Snooze(ctx, "missing", "09:00", 10))
}

func TestNextDose_SkipsLoggedSlot(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	ctx := context.Background()

	next, err := f.service.NextDose(ctx, model.DefaultProfileID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "09:00", next.Time)
	assert.Equal(t, 0, next.MinutesUntil)

	_, _, err = f.service.LogDose(ctx, "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)

	next, err = f.service.NextDose(ctx, model.DefaultProfileID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "21:00", next.Time)
}

func TestListDoses_FiltersByDate(t *testing.T) {
	f := newDoseFixture(t)
	f.addMedication(t, dailyMed(10, 3))

	ctx := context.Background()

	_, _, err := f.service.LogDose(ctx, "med-1", model.DoseTaken, "09:00")
	require.NoError(t, err)

	entries, err := f.service.ListDoses(ctx, model.DefaultProfileID, "2025-06-02")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	entries, err = f.service.ListDoses(ctx, model.DefaultProfileID, "2025-06-03")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
