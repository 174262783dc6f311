package service

import (
	"context"
	"testing"
	"time"

	"github.com/dosewise/dosewise/internal/kvstore"
	"github.com/dosewise/dosewise/internal/repository"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMedicationService(t *testing.T) *MedicationService {
	t.Helper()
	store := kvstore.NewMemoryStore()
	repo := repository.NewMedicationRepository(context.Background(), store, zap.NewNop())
	return NewMedicationService(repo, zap.NewNop())
}

func TestAddMedication_ValidationErrors(t *testing.T) {
	service := newMedicationService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		medication  *model.Medication
		expectedErr string
	}{
		{
			name:        "empty medication name",
			medication:  &model.Medication{Dosage: "100mg", Frequency: model.FrequencyDaily, Times: []string{"08:00"}},
			expectedErr: "medication name is required",
		},
		{
			name:        "empty dosage",
			medication:  &model.Medication{Name: "Test", Frequency: model.FrequencyDaily, Times: []string{"08:00"}},
			expectedErr: "medication dosage is required",
		},
		{
			name:        "invalid frequency",
			medication:  &model.Medication{Name: "Test", Dosage: "100mg", Frequency: "hourly"},
			expectedErr: "invalid frequency",
		},
		{
			name:        "negative stock",
			medication:  &model.Medication{Name: "Test", Dosage: "100mg", Frequency: model.FrequencyDaily, Times: []string{"08:00"}, Stock: -1},
			expectedErr: "stock must not be negative",
		},
		{
			name:        "daily without time slots",
			medication:  &model.Medication{Name: "Test", Dosage: "100mg", Frequency: model.FrequencyDaily},
			expectedErr: "at least one time slot is required",
		},
		{
			name:        "malformed time slot",
			medication:  &model.Medication{Name: "Test", Dosage: "100mg", Frequency: model.FrequencyDaily, Times: []string{"8am"}},
			expectedErr: "invalid time slot",
		},
		{
			name:        "interval without interval minutes",
			medication:  &model.Medication{Name: "Test", Dosage: "100mg", Frequency: model.FrequencyInterval, StartTime: "08:00"},
			expectedErr: "interval minutes must be positive",
		},
		{
			name:        "interval with bad start time",
			medication:  &model.Medication{Name: "Test", Dosage: "100mg", Frequency: model.FrequencyInterval, IntervalMinutes: 240, StartTime: "morning"},
			expectedErr: "invalid start time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.AddMedication(ctx, tt.medication)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestAddMedication_IntervalExpandsSlotCache(t *testing.T) {
	service := newMedicationService(t)

	med := &model.Medication{
		Name:            "Antibiotic",
		Dosage:          "500mg",
		Frequency:       model.FrequencyInterval,
		IntervalMinutes: 240,
		StartTime:       "08:00",
		Times:           []string{"01:00"}, // caller-supplied slots are ignored
	}

	require.NoError(t, service.AddMedication(context.Background(), med))
	assert.Equal(t, []string{"08:00", "12:00", "16:00", "20:00"}, med.Times)
	assert.Equal(t, model.DefaultProfileID, med.ProfileID)
	assert.NotEmpty(t, med.ID)
}

func TestAddMedication_AsNeededClearsSchedule(t *testing.T) {
	service := newMedicationService(t)

	med := &model.Medication{
		Name:            "Painkiller",
		Dosage:          "200mg",
		Frequency:       model.FrequencyAsNeeded,
		Times:           []string{"08:00"},
		DaysOfWeek:      []time.Weekday{time.Monday},
		IntervalMinutes: 60,
		StartTime:       "08:00",
	}

	require.NoError(t, service.AddMedication(context.Background(), med))
	assert.Empty(t, med.Times)
	assert.Empty(t, med.DaysOfWeek)
	assert.Zero(t, med.IntervalMinutes)
	assert.Empty(t, med.StartTime)
}

func TestAddMedication_DailySortsSlotsAndDropsDays(t *testing.T) {
	service := newMedicationService(t)

	med := &model.Medication{
		Name:       "Vitamin",
		Dosage:     "1 tablet",
		Frequency:  model.FrequencyDaily,
		Times:      []string{"21:00", "08:00"},
		DaysOfWeek: []time.Weekday{time.Monday},
	}

	require.NoError(t, service.AddMedication(context.Background(), med))
	assert.Equal(t, []string{"08:00", "21:00"}, med.Times)
	assert.Empty(t, med.DaysOfWeek)
}

func TestAddMedication_UnknownSoundCoercedToDefault(t *testing.T) {
	service := newMedicationService(t)

	med := &model.Medication{
		Name:      "Vitamin",
		Dosage:    "1 tablet",
		Frequency: model.FrequencyDaily,
		Times:     []string{"08:00"},
		Sound:     "klaxon",
	}

	require.NoError(t, service.AddMedication(context.Background(), med))
	assert.Equal(t, model.SoundDefault, med.Sound)
}

func TestUpdateMedication_PreservesIdentityAndOwnership(t *testing.T) {
	service := newMedicationService(t)
	ctx := context.Background()

	med := &model.Medication{
		ProfileID: "p1",
		Name:      "Vitamin",
		Dosage:    "1 tablet",
		Frequency: model.FrequencyDaily,
		Times:     []string{"08:00"},
	}
	require.NoError(t, service.AddMedication(ctx, med))

	updates := &model.Medication{
		Name:      "Vitamin D",
		Dosage:    "2 tablets",
		Frequency: model.FrequencyDaily,
		Times:     []string{"09:00"},
	}
	require.NoError(t, service.UpdateMedication(ctx, med.ID, updates))

	assert.Equal(t, med.ID, updates.ID)
	assert.Equal(t, "p1", updates.ProfileID)

	stored, err := service.GetMedication(ctx, med.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vitamin D", stored.Name)
	assert.Equal(t, []string{"09:00"}, stored.Times)
}

func TestUpdateMedication_NotFound(t *testing.T) {
	service := newMedicationService(t)

	err := service.UpdateMedication(context.Background(), "missing", &model.Medication{
		Name:      "Test",
		Dosage:    "100mg",
		Frequency: model.FrequencyDaily,
		Times:     []string{"08:00"},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "medication not found")
}

func TestRefill_SetsStockAndStampsDate(t *testing.T) {
	service := newMedicationService(t)
	ctx := context.Background()

	med := &model.Medication{
		Name:      "Vitamin",
		Dosage:    "1 tablet",
		Frequency: model.FrequencyDaily,
		Times:     []string{"08:00"},
		Stock:     2,
	}
	require.NoError(t, service.AddMedication(ctx, med))

	refilled, err := service.Refill(ctx, med.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, refilled.Stock)
	require.NotNil(t, refilled.RefillDate)
	assert.Equal(t, time.Now().Format("2006-01-02"), *refilled.RefillDate)

	_, err = service.Refill(ctx, med.ID, -1)
	assert.Error(t, err)
}

func TestDeleteMedication(t *testing.T) {
	service := newMedicationService(t)
	ctx := context.Background()

	med := &model.Medication{
		Name:      "Vitamin",
		Dosage:    "1 tablet",
		Frequency: model.FrequencyDaily,
		Times:     []string{"08:00"},
	}
	require.NoError(t, service.AddMedication(ctx, med))
	require.NoError(t, service.DeleteMedication(ctx, med.ID))

	_, err := service.GetMedication(ctx, med.ID)
	assert.Error(t, err)

	assert.Error(t, service.DeleteMedication(ctx, med.ID))
}
