package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/repositories"
	apperrors "github.com/zatekoja/priorcare/pkg/errors"
)

// AppointmentStore keeps appointments in process memory in insertion order.
// Every read returns copies, so callers only ever see snapshots.
type AppointmentStore struct {
	mu           sync.RWMutex
	appointments []*entities.Appointment
	index        map[string]int
}

// NewAppointmentStore creates an empty store
func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{
		index: make(map[string]int),
	}
}

var _ repositories.AppointmentRepository = (*AppointmentStore)(nil)

// Create appends a new appointment
func (s *AppointmentStore) Create(ctx context.Context, appointment *entities.Appointment) error {
	if appointment == nil || appointment.ID == "" {
		return apperrors.NewValidationError("appointment id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[appointment.ID]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("appointment with id %s already exists", appointment.ID))
	}
	s.index[appointment.ID] = len(s.appointments)
	s.appointments = append(s.appointments, appointment.Clone())
	return nil
}

// GetByID retrieves an appointment by ID
func (s *AppointmentStore) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	return s.appointments[i].Clone(), nil
}

// List returns a snapshot of matching appointments in insertion order
func (s *AppointmentStore) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if filter.Matches(a) {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

// UpdateStatus moves a PENDING appointment to a terminal status
func (s *AppointmentStore) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}

	current := s.appointments[i]
	if !current.Status.CanTransitionTo(status) {
		return nil, apperrors.NewConflictError(fmt.Sprintf(
			"appointment %s cannot move from %s to %s", id, current.Status, status,
		))
	}

	current.Status = status
	current.UpdatedAt = time.Now().UTC()
	return current.Clone(), nil
}
