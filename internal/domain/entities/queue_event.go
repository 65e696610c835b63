package entities

import (
	"time"

	"github.com/google/uuid"
)

// QueueEventType represents the kind of change made to the appointment set
type QueueEventType string

const (
	QueueEventTypeSubmitted     QueueEventType = "submitted"
	QueueEventTypeStatusChanged QueueEventType = "status_changed"
)

// QueueEvent is published after every mutation of the appointment set
type QueueEvent struct {
	ID            string            `json:"id"`
	AppointmentID string            `json:"appointment_id"`
	EventType     QueueEventType    `json:"event_type"`
	Status        AppointmentStatus `json:"status"`
	RiskCategory  RiskCategory      `json:"risk_category,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// NewQueueEvent creates a new queue event for the given appointment
func NewQueueEvent(appointment *Appointment, eventType QueueEventType) *QueueEvent {
	return &QueueEvent{
		ID:            uuid.New().String(),
		AppointmentID: appointment.ID,
		EventType:     eventType,
		Status:        appointment.Status,
		RiskCategory:  appointment.RiskCategory,
		Timestamp:     time.Now().UTC(),
	}
}
