package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/priorcare/internal/adapters/memory"
	"github.com/zatekoja/priorcare/internal/domain/entities"
	apperrors "github.com/zatekoja/priorcare/pkg/errors"
)

func TestClinicService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("saves valid settings", func(t *testing.T) {
		svc := NewClinicService(memory.NewClinicStore())
		cfg := entities.DefaultClinicConfig()
		cfg.Location = "  Riverside Clinic "
		cfg.ClosingTime = "20:30"

		saved, err := svc.Update(ctx, &cfg)
		require.NoError(t, err)
		assert.Equal(t, "Riverside Clinic", saved.Location)
		assert.False(t, saved.UpdatedAt.IsZero())

		got, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "20:30", got.ClosingTime)
	})

	t.Run("rejects malformed times", func(t *testing.T) {
		svc := NewClinicService(memory.NewClinicStore())
		cfg := entities.DefaultClinicConfig()
		cfg.OpeningTime = "8am"

		_, err := svc.Update(ctx, &cfg)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects closing before opening", func(t *testing.T) {
		svc := NewClinicService(memory.NewClinicStore())
		cfg := entities.DefaultClinicConfig()
		cfg.OpeningTime = "18:00"
		cfg.ClosingTime = "08:00"

		_, err := svc.Update(ctx, &cfg)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		svc := NewClinicService(memory.NewClinicStore())
		cfg := entities.DefaultClinicConfig()
		cfg.MaxPatientsPerDay = 0

		_, err := svc.Update(ctx, &cfg)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

		got, err := svc.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 40, got.MaxPatientsPerDay)
	})

	t.Run("rejects nil", func(t *testing.T) {
		svc := NewClinicService(memory.NewClinicStore())
		_, err := svc.Update(ctx, nil)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}
