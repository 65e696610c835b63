package services

import (
	"cmp"
	"slices"

	"github.com/zatekoja/priorcare/internal/domain/entities"
)

const (
	waitMinutesPerPatient = 15
	waitBaseMinutes       = 10
)

// Prioritize returns the PENDING appointments in clinical priority order:
// risk category (HIGH first), then severity (highest first), then request time
// (earliest first). Full ties keep their input order.
func Prioritize(appointments []*entities.Appointment) []*entities.Appointment {
	queue := make([]*entities.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a != nil && a.IsPending() {
			queue = append(queue, a)
		}
	}

	slices.SortStableFunc(queue, compareQueuePriority)
	return queue
}

func compareQueuePriority(a, b *entities.Appointment) int {
	if c := cmp.Compare(b.RiskCategory.Weight(), a.RiskCategory.Weight()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.SeverityScore, a.SeverityScore); c != 0 {
		return c
	}
	return a.RequestTime.Compare(b.RequestTime)
}

// CountPending counts appointments still awaiting consultation.
func CountPending(appointments []*entities.Appointment) int {
	n := 0
	for _, a := range appointments {
		if a != nil && a.IsPending() {
			n++
		}
	}
	return n
}

// EstimateWaitMinutes is the static wait quoted to a new request given how many
// appointments were PENDING when it was submitted.
func EstimateWaitMinutes(pendingCount int) int {
	if pendingCount < 0 {
		pendingCount = 0
	}
	return pendingCount*waitMinutesPerPatient + waitBaseMinutes
}
