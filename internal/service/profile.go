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

// ProfileService handles family profile management
type ProfileService struct {
	repo   *repository.ProfileRepository
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo *repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		logger: logger,
	}
}

// EnsureDefault creates the implicit default profile if no profiles exist
// yet, so medications created without an assignment always have an owner.
func (s *ProfileService) EnsureDefault(ctx context.Context) error {
	if len(s.repo.List()) > 0 {
		return nil
	}

	now := time.Now()
	profile := model.Profile{
		ID:        model.DefaultProfileID,
		Name:      "Me",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return fmt.Errorf("failed to create default profile: %w", err)
	}

	s.logger.Info("default profile created")
	return nil
}

// ListProfiles returns all profiles
func (s *ProfileService) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	return s.repo.List(), nil
}

// GetProfile retrieves a profile by ID
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	if id == "" {
		return nil, fmt.Errorf("profile ID is required")
	}
	profile, err := s.repo.Get(id)
	if err != nil {
		return nil, fmt.Errorf("profile not found: %w", err)
	}
	return profile, nil
}

// AddProfile validates and stores a new profile
func (s *ProfileService) AddProfile(ctx context.Context, profile *model.Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name is required")
	}

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.Sound != "" {
		profile.Sound = model.NormalizeSound(profile.Sound)
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := s.repo.Create(ctx, *profile); err != nil {
		s.logger.Error("failed to add profile",
			zap.Error(err),
			zap.String("name", profile.Name),
		)
		return fmt.Errorf("failed to add profile: %w", err)
	}

	s.logger.Info("profile added successfully",
		zap.String("profile_id", profile.ID),
		zap.String("name", profile.Name),
	)

	return nil
}

// UpdateProfile updates an existing profile
func (s *ProfileService) UpdateProfile(ctx context.Context, id string, updates *model.Profile) error {
	if id == "" {
		return fmt.Errorf("profile ID is required")
	}
	if updates.Name == "" {
		return fmt.Errorf("profile name is required")
	}

	existing, err := s.repo.Get(id)
	if err != nil {
		return fmt.Errorf("profile not found: %w", err)
	}

	updates.ID = existing.ID
	updates.CreatedAt = existing.CreatedAt
	updates.UpdatedAt = time.Now()
	if updates.Sound != "" {
		updates.Sound = model.NormalizeSound(updates.Sound)
	}

	if err := s.repo.Update(ctx, *updates); err != nil {
		s.logger.Error("failed to update profile",
			zap.Error(err),
			zap.String("profile_id", id),
		)
		return fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated successfully",
		zap.String("profile_id", id),
	)

	return nil
}

// DeleteProfile deletes a profile. Its medications and logs are kept; the
// default profile cannot be removed.
func (s *ProfileService) DeleteProfile(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("profile ID is required")
	}
	if id == model.DefaultProfileID {
		return fmt.Errorf("the default profile cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete profile",
			zap.Error(err),
			zap.String("profile_id", id),
		)
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	s.logger.Info("profile deleted successfully",
		zap.String("profile_id", id),
	)

	return nil
}
