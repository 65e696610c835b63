package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zatekoja/priorcare/internal/domain/entities"
)

// subscriberBuffer bounds each subscriber channel. Queue events only tell a
// replica to drop its cached queue, so a subscriber that falls behind and
// misses some still converges on the next event or when the cache TTL lapses.
const subscriberBuffer = 100

// ErrInvalidQueueEvent is returned for events that do not name an appointment.
var ErrInvalidQueueEvent = errors.New("queue event must name an appointment")

func validateQueueEvent(event *entities.QueueEvent) error {
	if event == nil || event.AppointmentID == "" || event.EventType == "" {
		return ErrInvalidQueueEvent
	}
	return nil
}

// encodeQueueEvent renders the pub/sub payload:
//
//	{"id":"…","appointment_id":"…","event_type":"status_changed","status":"CONSULTED","risk_category":"HIGH","timestamp":"…"}
//
// Payloads carry identifiers and queue state only. Symptoms and patient
// details never leave the service through the bus.
func encodeQueueEvent(event *entities.QueueEvent) ([]byte, error) {
	if err := validateQueueEvent(event); err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

func decodeQueueEvent(payload string) (*entities.QueueEvent, error) {
	var event entities.QueueEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if err := validateQueueEvent(&event); err != nil {
		return nil, err
	}
	return &event, nil
}
