package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/repositories"
	"github.com/zatekoja/priorcare/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/priorcare/pkg/errors"
)

var appointmentColumnNames = []string{
	"id", "patient_id", "patient_name", "patient_age", "symptoms",
	"chronic_conditions", "severity_score", "risk_category", "preferred_window",
	"request_time", "scheduled_time", "status", "estimated_wait_minutes",
	"ai_reasoning", "updated_at",
}

func setupMockDB(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create mock database")
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewClientFromDB(db), mock
}

func appointmentRow(rows *sqlmock.Rows, id string, status entities.AppointmentStatus) *sqlmock.Rows {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, "p1", "Ada", 54, "chest pain",
		"{Hypertension,\"Type 2 Diabetes\"}", 9, "HIGH", "MORNING",
		at, nil, string(status), 25,
		"Cardiac symptoms.", at,
	)
}

func TestAppointmentAdapter_Create(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewAppointmentAdapter(client, nil)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "appointments"`) + `.*` + regexp.QuoteMeta(`'{"Diabetes"}'`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := adapter.Create(context.Background(), &entities.Appointment{
		ID:                "a1",
		PatientID:         "p1",
		ChronicConditions: []string{"Diabetes"},
		SeverityScore:     4,
		RiskCategory:      entities.RiskCategoryMedium,
		PreferredWindow:   entities.PreferredWindowMorning,
		Status:            entities.AppointmentStatusPending,
		RequestTime:       time.Now(),
		UpdatedAt:         time.Now(),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentAdapter_CreateDuplicate(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewAppointmentAdapter(client, nil)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "appointments"`)).
		WillReturnError(&pq.Error{Code: "23505"})

	err := adapter.Create(context.Background(), &entities.Appointment{ID: "a1"})

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
}

func TestAppointmentAdapter_GetByID(t *testing.T) {
	t.Run("scans every column", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewAppointmentAdapter(client, nil)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM "appointments" WHERE ("id" = 'a1')`)).
			WillReturnRows(appointmentRow(sqlmock.NewRows(appointmentColumnNames), "a1", entities.AppointmentStatusPending))

		got, err := adapter.GetByID(context.Background(), "a1")
		require.NoError(t, err)

		assert.Equal(t, "a1", got.ID)
		assert.Equal(t, []string{"Hypertension", "Type 2 Diabetes"}, got.ChronicConditions)
		assert.Equal(t, entities.RiskCategoryHigh, got.RiskCategory)
		assert.Equal(t, entities.AppointmentStatusPending, got.Status)
		assert.Equal(t, 25, got.EstimatedWaitMinutes)
		assert.Nil(t, got.ScheduledTime)
	})

	t.Run("reports missing rows as not found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewAppointmentAdapter(client, nil)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM "appointments"`)).
			WillReturnRows(sqlmock.NewRows(appointmentColumnNames))

		_, err := adapter.GetByID(context.Background(), "missing")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAppointmentAdapter_List(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewAppointmentAdapter(client, nil)

	rows := sqlmock.NewRows(appointmentColumnNames)
	appointmentRow(rows, "a1", entities.AppointmentStatusPending)
	appointmentRow(rows, "a2", entities.AppointmentStatusPending)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "appointments" WHERE ("status" = 'PENDING') ORDER BY "seq" ASC`)).
		WillReturnRows(rows)

	got, err := adapter.List(context.Background(), repositories.AppointmentFilter{Status: entities.AppointmentStatusPending})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "a2", got[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentAdapter_ListWithoutFilterReturnsEmptySlice(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewAppointmentAdapter(client, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "appointments" ORDER BY "seq" ASC`)).
		WillReturnRows(sqlmock.NewRows(appointmentColumnNames))

	got, err := adapter.List(context.Background(), repositories.AppointmentFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAppointmentAdapter_UpdateStatus(t *testing.T) {
	updatePattern := regexp.QuoteMeta(`UPDATE "appointments" SET`) + `.*` +
		regexp.QuoteMeta(`("status" = 'PENDING')`) + `.*` + regexp.QuoteMeta(`RETURNING`)

	t.Run("moves a pending appointment", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewAppointmentAdapter(client, nil)

		mock.ExpectQuery(updatePattern).
			WillReturnRows(appointmentRow(sqlmock.NewRows(appointmentColumnNames), "a1", entities.AppointmentStatusConsulted))

		got, err := adapter.UpdateStatus(context.Background(), "a1", entities.AppointmentStatusConsulted)
		require.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusConsulted, got.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a resolved appointment as a conflict", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewAppointmentAdapter(client, nil)

		mock.ExpectQuery(updatePattern).WillReturnRows(sqlmock.NewRows(appointmentColumnNames))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM "appointments" WHERE ("id" = 'a1')`)).
			WillReturnRows(appointmentRow(sqlmock.NewRows(appointmentColumnNames), "a1", entities.AppointmentStatusReferred))

		_, err := adapter.UpdateStatus(context.Background(), "a1", entities.AppointmentStatusConsulted)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})

	t.Run("reports unknown ids as not found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewAppointmentAdapter(client, nil)

		mock.ExpectQuery(updatePattern).WillReturnRows(sqlmock.NewRows(appointmentColumnNames))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM "appointments"`)).WillReturnRows(sqlmock.NewRows(appointmentColumnNames))

		_, err := adapter.UpdateStatus(context.Background(), "nope", entities.AppointmentStatusNoShow)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("rejects non-terminal targets without a query", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewAppointmentAdapter(client, nil)

		_, err := adapter.UpdateStatus(context.Background(), "a1", entities.AppointmentStatusPending)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
