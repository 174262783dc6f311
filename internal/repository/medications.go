package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/dosewise/dosewise/internal/kvstore"
	"github.com/dosewise/dosewise/pkg/model"
	"go.uber.org/zap"
)

// MedicationRepository manages medication data
type MedicationRepository struct {
	store  kvstore.Store
	logger *zap.Logger

	mu   sync.RWMutex
	meds []model.Medication
}

// NewMedicationRepository creates a MedicationRepository and loads the
// persisted collection.
func NewMedicationRepository(ctx context.Context, store kvstore.Store, logger *zap.Logger) *MedicationRepository {
	r := &MedicationRepository{
		store:  store,
		logger: logger,
	}

	if _, err := store.Load(ctx, kvstore.KeyMedications, &r.meds); err != nil {
		logger.Warn("failed to load medications, starting empty", zap.Error(err))
		r.meds = nil
	}

	return r
}

// All returns every medication across all profiles. The reminder poller is
// deliberately profile-agnostic, so this is its view of the world.
func (r *MedicationRepository) All() []model.Medication {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Medication, len(r.meds))
	copy(out, r.meds)
	return out
}

// ListByProfile returns the medications owned by one profile.
func (r *MedicationRepository) ListByProfile(profileID string) []model.Medication {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Medication
	for i := range r.meds {
		if r.meds[i].ProfileID == profileID {
			out = append(out, r.meds[i])
		}
	}
	return out
}

// Get retrieves a medication by ID.
func (r *MedicationRepository) Get(id string) (*model.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.meds {
		if r.meds[i].ID == id {
			med := r.meds[i]
			return &med, nil
		}
	}
	return nil, fmt.Errorf("medication not found: %s", id)
}

// Create appends a new medication and persists the collection.
func (r *MedicationRepository) Create(ctx context.Context, med model.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.meds {
		if r.meds[i].ID == med.ID {
			return fmt.Errorf("medication already exists: %s", med.ID)
		}
	}

	r.meds = append(r.meds, med)
	return r.persist(ctx)
}

// Update replaces an existing medication in place.
func (r *MedicationRepository) Update(ctx context.Context, med model.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.meds {
		if r.meds[i].ID == med.ID {
			r.meds[i] = med
			return r.persist(ctx)
		}
	}
	return fmt.Errorf("medication not found: %s", med.ID)
}

// Delete removes a medication. Log entries referencing it are kept; the
// display layer falls back to "Unknown" for the dangling reference.
func (r *MedicationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.meds {
		if r.meds[i].ID == id {
			r.meds = append(r.meds[:i], r.meds[i+1:]...)
			return r.persist(ctx)
		}
	}
	return fmt.Errorf("medication not found: %s", id)
}

// persist writes the collection. Callers must hold the write lock.
func (r *MedicationRepository) persist(ctx context.Context) error {
	if err := r.store.Save(ctx, kvstore.KeyMedications, r.meds); err != nil {
		r.logger.Error("failed to persist medications", zap.Error(err))
		return fmt.Errorf("failed to persist medications: %w", err)
	}
	return nil
}
