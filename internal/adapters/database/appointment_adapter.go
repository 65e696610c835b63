package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/repositories"
	"github.com/zatekoja/priorcare/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/priorcare/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/priorcare/pkg/errors"
)

const appointmentsTable = "appointments"

var appointmentColumns = []interface{}{
	"id", "patient_id", "patient_name", "patient_age", "symptoms",
	"chronic_conditions", "severity_score", "risk_category", "preferred_window",
	"request_time", "scheduled_time", "status", "estimated_wait_minutes",
	"ai_reasoning", "updated_at",
}

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewAppointmentAdapter creates a new appointment adapter. metrics may be nil.
func NewAppointmentAdapter(client *postgres.Client, metrics *observability.Metrics) *AppointmentAdapter {
	return &AppointmentAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

var _ repositories.AppointmentRepository = (*AppointmentAdapter)(nil)

// Create creates a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	defer a.observe(ctx, "appointments.insert", time.Now())

	conditions := appointment.ChronicConditions
	if conditions == nil {
		conditions = []string{}
	}

	record := goqu.Record{
		"id":                     appointment.ID,
		"patient_id":             appointment.PatientID,
		"patient_name":           appointment.PatientName,
		"patient_age":            appointment.PatientAge,
		"symptoms":               appointment.Symptoms,
		"chronic_conditions":     pq.Array(conditions),
		"severity_score":         appointment.SeverityScore,
		"risk_category":          appointment.RiskCategory,
		"preferred_window":       appointment.PreferredWindow,
		"request_time":           appointment.RequestTime,
		"scheduled_time":         appointment.ScheduledTime,
		"status":                 appointment.Status,
		"estimated_wait_minutes": appointment.EstimatedWaitMinutes,
		"ai_reasoning":           appointment.AIReasoning,
		"updated_at":             appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert(appointmentsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.NewConflictError(fmt.Sprintf("appointment with id %s already exists", appointment.ID))
		}
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	defer a.observe(ctx, "appointments.get", time.Now())

	query, args, err := a.db.Select(appointmentColumns...).
		From(appointmentsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return appointment, nil
}

// List returns matching appointments in insertion order
func (a *AppointmentAdapter) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	defer a.observe(ctx, "appointments.list", time.Now())

	q := a.db.Select(appointmentColumns...).From(appointmentsTable)

	where := goqu.Ex{}
	if filter.PatientID != "" {
		where["patient_id"] = filter.PatientID
	}
	if filter.Status != "" {
		where["status"] = filter.Status
	}
	if len(where) > 0 {
		q = q.Where(where)
	}

	query, args, err := q.Order(goqu.C("seq").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	appointments := make([]*entities.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointments", err)
	}

	return appointments, nil
}

// UpdateStatus moves a PENDING appointment to a terminal status in one conditional update
func (a *AppointmentAdapter) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	defer a.observe(ctx, "appointments.update_status", time.Now())

	if !entities.AppointmentStatusPending.CanTransitionTo(status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot move an appointment to %s", status))
	}

	query, args, err := a.db.Update(appointmentsTable).
		Set(goqu.Record{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{
			"id":     id,
			"status": entities.AppointmentStatusPending,
		}).
		Returning(appointmentColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	updated, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewInternalError("failed to update appointment status", err)
	}

	// Nothing matched: either the id is unknown or it already left PENDING.
	current, getErr := a.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.NewConflictError(fmt.Sprintf(
		"appointment %s cannot move from %s to %s", id, current.Status, status,
	))
}

func (a *AppointmentAdapter) observe(ctx context.Context, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var conditions pq.StringArray
	var scheduledTime sql.NullString

	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.PatientName,
		&appointment.PatientAge,
		&appointment.Symptoms,
		&conditions,
		&appointment.SeverityScore,
		&appointment.RiskCategory,
		&appointment.PreferredWindow,
		&appointment.RequestTime,
		&scheduledTime,
		&appointment.Status,
		&appointment.EstimatedWaitMinutes,
		&appointment.AIReasoning,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appointment.ChronicConditions = []string(conditions)
	if appointment.ChronicConditions == nil {
		appointment.ChronicConditions = []string{}
	}
	if scheduledTime.Valid {
		appointment.ScheduledTime = &scheduledTime.String
	}
	return appointment, nil
}
