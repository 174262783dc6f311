package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/dosewise/dosewise/internal/kvstore"
	"github.com/dosewise/dosewise/pkg/model"
	"go.uber.org/zap"
)

// HealthDataRepository manages the vitals, appointments and mood
// collections. They share one repository because their access patterns are
// identical: append, list by profile, delete by ID.
type HealthDataRepository struct {
	store  kvstore.Store
	logger *zap.Logger

	mu           sync.RWMutex
	vitals       []model.Vital
	appointments []model.Appointment
	moods        []model.MoodEntry
}

// NewHealthDataRepository creates a HealthDataRepository and loads all
// three persisted collections.
func NewHealthDataRepository(ctx context.Context, store kvstore.Store, logger *zap.Logger) *HealthDataRepository {
	r := &HealthDataRepository{
		store:  store,
		logger: logger,
	}

	if _, err := store.Load(ctx, kvstore.KeyVitals, &r.vitals); err != nil {
		logger.Warn("failed to load vitals, starting empty", zap.Error(err))
		r.vitals = nil
	}
	if _, err := store.Load(ctx, kvstore.KeyAppointments, &r.appointments); err != nil {
		logger.Warn("failed to load appointments, starting empty", zap.Error(err))
		r.appointments = nil
	}
	if _, err := store.Load(ctx, kvstore.KeyMoods, &r.moods); err != nil {
		logger.Warn("failed to load moods, starting empty", zap.Error(err))
		r.moods = nil
	}

	return r
}

// AddVital appends a vital reading.
func (r *HealthDataRepository) AddVital(ctx context.Context, v model.Vital) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vitals = append(r.vitals, v)
	return r.persist(ctx, kvstore.KeyVitals, r.vitals)
}

// ListVitals returns a profile's vital readings.
func (r *HealthDataRepository) ListVitals(profileID string) []model.Vital {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Vital
	for i := range r.vitals {
		if r.vitals[i].ProfileID == profileID {
			out = append(out, r.vitals[i])
		}
	}
	return out
}

// DeleteVital removes a vital reading by ID.
func (r *HealthDataRepository) DeleteVital(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.vitals {
		if r.vitals[i].ID == id {
			r.vitals = append(r.vitals[:i], r.vitals[i+1:]...)
			return r.persist(ctx, kvstore.KeyVitals, r.vitals)
		}
	}
	return fmt.Errorf("vital not found: %s", id)
}

// AddAppointment appends an appointment.
func (r *HealthDataRepository) AddAppointment(ctx context.Context, a model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.appointments = append(r.appointments, a)
	return r.persist(ctx, kvstore.KeyAppointments, r.appointments)
}

// ListAppointments returns a profile's appointments.
func (r *HealthDataRepository) ListAppointments(profileID string) []model.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Appointment
	for i := range r.appointments {
		if r.appointments[i].ProfileID == profileID {
			out = append(out, r.appointments[i])
		}
	}
	return out
}

// DeleteAppointment removes an appointment by ID.
func (r *HealthDataRepository) DeleteAppointment(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.appointments {
		if r.appointments[i].ID == id {
			r.appointments = append(r.appointments[:i], r.appointments[i+1:]...)
			return r.persist(ctx, kvstore.KeyAppointments, r.appointments)
		}
	}
	return fmt.Errorf("appointment not found: %s", id)
}

// AddMood appends a mood entry.
func (r *HealthDataRepository) AddMood(ctx context.Context, m model.MoodEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.moods = append(r.moods, m)
	return r.persist(ctx, kvstore.KeyMoods, r.moods)
}

// ListMoods returns a profile's mood entries.
func (r *HealthDataRepository) ListMoods(profileID string) []model.MoodEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.MoodEntry
	for i := range r.moods {
		if r.moods[i].ProfileID == profileID {
			out = append(out, r.moods[i])
		}
	}
	return out
}

// DeleteMood removes a mood entry by ID.
func (r *HealthDataRepository) DeleteMood(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.moods {
		if r.moods[i].ID == id {
			r.moods = append(r.moods[:i], r.moods[i+1:]...)
			return r.persist(ctx, kvstore.KeyMoods, r.moods)
		}
	}
	return fmt.Errorf("mood entry not found: %s", id)
}

// persist writes one collection. Callers must hold the write lock.
func (r *HealthDataRepository) persist(ctx context.Context, key string, value any) error {
	if err := r.store.Save(ctx, key, value); err != nil {
		r.logger.Error("failed to persist collection", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}
