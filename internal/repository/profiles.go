// Package repository holds the persistent collections. Each repository
// keeps its collection in memory and writes the whole serialized list to
// the key-value store on every mutation, one key per collection. Corrupt
// stored state degrades to an empty collection instead of failing startup.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/dosewise/dosewise/internal/kvstore"
	"github.com/dosewise/dosewise/pkg/model"
	"go.uber.org/zap"
)

// ProfileRepository manages profile data
type ProfileRepository struct {
	store  kvstore.Store
	logger *zap.Logger

	mu       sync.RWMutex
	profiles []model.Profile
}

// NewProfileRepository creates a ProfileRepository and loads the persisted
// collection.
func NewProfileRepository(ctx context.Context, store kvstore.Store, logger *zap.Logger) *ProfileRepository {
	r := &ProfileRepository{
		store:  store,
		logger: logger,
	}

	if _, err := store.Load(ctx, kvstore.KeyProfiles, &r.profiles); err != nil {
		logger.Warn("failed to load profiles, starting empty", zap.Error(err))
		r.profiles = nil
	}

	return r
}

// List returns all profiles.
func (r *ProfileRepository) List() []model.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Get retrieves a profile by ID.
func (r *ProfileRepository) Get(id string) (*model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.profiles {
		if r.profiles[i].ID == id {
			p := r.profiles[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("profile not found: %s", id)
}

// Create appends a new profile and persists the collection.
func (r *ProfileRepository) Create(ctx context.Context, profile model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.profiles {
		if r.profiles[i].ID == profile.ID {
			return fmt.Errorf("profile already exists: %s", profile.ID)
		}
	}

	r.profiles = append(r.profiles, profile)
	return r.persist(ctx)
}

// Update replaces an existing profile in place.
func (r *ProfileRepository) Update(ctx context.Context, profile model.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.profiles {
		if r.profiles[i].ID == profile.ID {
			r.profiles[i] = profile
			return r.persist(ctx)
		}
	}
	return fmt.Errorf("profile not found: %s", profile.ID)
}

// Delete removes a profile.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.profiles {
		if r.profiles[i].ID == id {
			r.profiles = append(r.profiles[:i], r.profiles[i+1:]...)
			return r.persist(ctx)
		}
	}
	return fmt.Errorf("profile not found: %s", id)
}

// persist writes the collection. Callers must hold the write lock.
func (r *ProfileRepository) persist(ctx context.Context) error {
	if err := r.store.Save(ctx, kvstore.KeyProfiles, r.profiles); err != nil {
		r.logger.Error("failed to persist profiles", zap.Error(err))
		return fmt.Errorf("failed to persist profiles: %w", err)
	}
	return nil
}
