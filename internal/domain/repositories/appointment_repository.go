package repositories

import (
	"context"

	"github.com/zatekoja/priorcare/internal/domain/entities"
)

// AppointmentRepository is the single owned store of appointments.
// Appointments are never deleted.
type AppointmentRepository interface {
	// Create appends a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// List returns a snapshot of appointments in insertion order
	List(ctx context.Context, filter AppointmentFilter) ([]*entities.Appointment, error)

	// UpdateStatus moves a PENDING appointment to a terminal status.
	// Returns a conflict error if the appointment has already left PENDING.
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error)
}

// AppointmentFilter defines filters for listing appointments
type AppointmentFilter struct {
	PatientID string
	Status    entities.AppointmentStatus
}

// Matches reports whether the appointment passes the filter
func (f AppointmentFilter) Matches(a *entities.Appointment) bool {
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}
