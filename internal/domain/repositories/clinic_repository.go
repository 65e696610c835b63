package repositories

import (
	"context"

	"github.com/zatekoja/priorcare/internal/domain/entities"
)

// ClinicRepository stores the clinic's display settings
type ClinicRepository interface {
	// Get returns the saved settings, or the defaults when nothing has been saved
	Get(ctx context.Context) (*entities.ClinicConfig, error)

	// Save replaces the settings
	Save(ctx context.Context, cfg *entities.ClinicConfig) error
}
