package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/repositories"
	apperrors "github.com/zatekoja/priorcare/pkg/errors"
	"github.com/zatekoja/priorcare/pkg/validation"
)

// ClinicService manages the clinic's display settings.
type ClinicService struct {
	repo repositories.ClinicRepository
}

// NewClinicService creates a new clinic service.
func NewClinicService(repo repositories.ClinicRepository) *ClinicService {
	return &ClinicService{repo: repo}
}

// Get returns the current settings.
func (s *ClinicService) Get(ctx context.Context) (*entities.ClinicConfig, error) {
	return s.repo.Get(ctx)
}

// Update validates and replaces the settings.
func (s *ClinicService) Update(ctx context.Context, cfg *entities.ClinicConfig) (*entities.ClinicConfig, error) {
	if cfg == nil {
		return nil, apperrors.NewValidationError("clinic settings are required")
	}

	cfg.Location = strings.TrimSpace(cfg.Location)
	cfg.Specialization = strings.TrimSpace(cfg.Specialization)
	if err := validation.Struct(cfg); err != nil {
		return nil, err
	}

	opening, _ := time.Parse("15:04", cfg.OpeningTime)
	closing, _ := time.Parse("15:04", cfg.ClosingTime)
	if !closing.After(opening) {
		return nil, apperrors.NewValidationError("closingTime must be after openingTime")
	}

	cfg.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
