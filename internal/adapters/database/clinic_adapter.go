package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/repositories"
	"github.com/zatekoja/priorcare/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/priorcare/pkg/errors"
)

const (
	clinicSettingsTable = "clinic_settings"
	clinicSettingsRowID = 1
)

// ClinicAdapter stores the clinic settings in a single-row table
type ClinicAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewClinicAdapter creates a new clinic adapter
func NewClinicAdapter(client *postgres.Client) *ClinicAdapter {
	return &ClinicAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var _ repositories.ClinicRepository = (*ClinicAdapter)(nil)

// Get returns the saved settings, or the defaults when none were saved
func (a *ClinicAdapter) Get(ctx context.Context) (*entities.ClinicConfig, error) {
	query, args, err := a.db.Select(
		"location", "specialization", "opening_time", "closing_time",
		"max_patients_per_day", "consultation_duration_minutes", "updated_at",
	).From(clinicSettingsTable).
		Where(goqu.Ex{"id": clinicSettingsRowID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	cfg := &entities.ClinicConfig{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&cfg.Location,
		&cfg.Specialization,
		&cfg.OpeningTime,
		&cfg.ClosingTime,
		&cfg.MaxPatientsPerDay,
		&cfg.ConsultationDurationMinutes,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := entities.DefaultClinicConfig()
		return &defaults, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get clinic settings", err)
	}
	return cfg, nil
}

// Save upserts the settings row
func (a *ClinicAdapter) Save(ctx context.Context, cfg *entities.ClinicConfig) error {
	record := goqu.Record{
		"id":                            clinicSettingsRowID,
		"location":                      cfg.Location,
		"specialization":                cfg.Specialization,
		"opening_time":                  cfg.OpeningTime,
		"closing_time":                  cfg.ClosingTime,
		"max_patients_per_day":          cfg.MaxPatientsPerDay,
		"consultation_duration_minutes": cfg.ConsultationDurationMinutes,
		"updated_at":                    cfg.UpdatedAt,
	}

	query, args, err := a.db.Insert(clinicSettingsTable).
		Rows(record).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"location":                      goqu.L("EXCLUDED.location"),
			"specialization":                goqu.L("EXCLUDED.specialization"),
			"opening_time":                  goqu.L("EXCLUDED.opening_time"),
			"closing_time":                  goqu.L("EXCLUDED.closing_time"),
			"max_patients_per_day":          goqu.L("EXCLUDED.max_patients_per_day"),
			"consultation_duration_minutes": goqu.L("EXCLUDED.consultation_duration_minutes"),
			"updated_at":                    goqu.L("EXCLUDED.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save clinic settings", err)
	}
	return nil
}
