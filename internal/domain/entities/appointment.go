package entities

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus represents the status of an appointment.
// PENDING is the only non-terminal status.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConsulted AppointmentStatus = "CONSULTED"
	AppointmentStatusEmergency AppointmentStatus = "EMERGENCY"
	AppointmentStatusReferred  AppointmentStatus = "REFERRED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// AppointmentStatuses lists every status in display order.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConsulted,
	AppointmentStatusEmergency,
	AppointmentStatusReferred,
	AppointmentStatusNoShow,
}

// IsValid reports whether s is one of the known statuses.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusPending,
		AppointmentStatusConsulted,
		AppointmentStatusEmergency,
		AppointmentStatusReferred,
		AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether s is a resolved status.
func (s AppointmentStatus) IsTerminal() bool {
	return s.IsValid() && s != AppointmentStatusPending
}

// CanTransitionTo reports whether the one-way PENDING -> terminal transition allows next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	return s == AppointmentStatusPending && next.IsTerminal()
}

// ParseAppointmentStatus parses a status case-insensitively.
func ParseAppointmentStatus(value string) (AppointmentStatus, error) {
	s := AppointmentStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid appointment status: %q", value)
	}
	return s, nil
}

// PreferredWindow is the part of the day a patient would like to be seen.
type PreferredWindow string

const (
	PreferredWindowMorning PreferredWindow = "MORNING"
	PreferredWindowEvening PreferredWindow = "EVENING"
)

// IsValid reports whether w is MORNING or EVENING.
func (w PreferredWindow) IsValid() bool {
	return w == PreferredWindowMorning || w == PreferredWindowEvening
}

// ParsePreferredWindow parses a window; an empty value means MORNING.
func ParsePreferredWindow(value string) (PreferredWindow, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return PreferredWindowMorning, nil
	}
	w := PreferredWindow(strings.ToUpper(value))
	if !w.IsValid() {
		return "", fmt.Errorf("invalid preferred window: %q", value)
	}
	return w, nil
}

// Appointment is one triage request and, later, its consultation outcome.
// SeverityScore, RiskCategory and RequestTime are set once at creation.
type Appointment struct {
	ID                   string            `json:"id" db:"id"`
	PatientID            string            `json:"patientId" db:"patient_id"`
	PatientName          string            `json:"patientName" db:"patient_name"`
	PatientAge           int               `json:"patientAge" db:"patient_age"`
	Symptoms             string            `json:"symptoms" db:"symptoms"`
	ChronicConditions    []string          `json:"chronicConditions" db:"chronic_conditions"`
	SeverityScore        int               `json:"severityScore" db:"severity_score"`
	RiskCategory         RiskCategory      `json:"riskCategory" db:"risk_category"`
	PreferredWindow      PreferredWindow   `json:"preferredWindow" db:"preferred_window"`
	RequestTime          time.Time         `json:"requestTime" db:"request_time"`
	ScheduledTime        *string           `json:"scheduledTime" db:"scheduled_time"`
	Status               AppointmentStatus `json:"status" db:"status"`
	EstimatedWaitMinutes int               `json:"estimatedWaitMinutes" db:"estimated_wait_minutes"`
	AIReasoning          string            `json:"aiReasoning,omitempty" db:"ai_reasoning"`
	UpdatedAt            time.Time         `json:"updatedAt" db:"updated_at"`
}

// IsPending reports whether the appointment is still in the active queue.
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// Clone returns a deep copy so callers can hand out snapshots.
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	if a.ChronicConditions != nil {
		c.ChronicConditions = append([]string(nil), a.ChronicConditions...)
	}
	if a.ScheduledTime != nil {
		slot := *a.ScheduledTime
		c.ScheduledTime = &slot
	}
	return &c
}
