package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/priorcare/internal/domain/entities"
)

var queueEpoch = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func pending(id string, risk entities.RiskCategory, severity int, offsetSeconds int) *entities.Appointment {
	return &entities.Appointment{
		ID:            id,
		RiskCategory:  risk,
		SeverityScore: severity,
		RequestTime:   queueEpoch.Add(time.Duration(offsetSeconds) * time.Second),
		Status:        entities.AppointmentStatusPending,
	}
}

func ids(appointments []*entities.Appointment) []string {
	out := make([]string, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, a.ID)
	}
	return out
}

func TestPrioritize_RiskThenSeverityThenArrival(t *testing.T) {
	a := pending("A", entities.RiskCategoryHigh, 8, 100)
	b := pending("B", entities.RiskCategoryHigh, 8, 50)
	c := pending("C", entities.RiskCategoryMedium, 9, 10)

	got := Prioritize([]*entities.Appointment{a, b, c})

	assert.Equal(t, []string{"B", "A", "C"}, ids(got))
}

func TestPrioritize_FullOrdering(t *testing.T) {
	input := []*entities.Appointment{
		pending("low-early", entities.RiskCategoryLow, 3, 0),
		pending("med-5", entities.RiskCategoryMedium, 5, 20),
		pending("high-6", entities.RiskCategoryHigh, 6, 30),
		pending("med-7", entities.RiskCategoryMedium, 7, 40),
		pending("high-9", entities.RiskCategoryHigh, 9, 50),
		pending("low-late", entities.RiskCategoryLow, 3, 60),
	}

	got := Prioritize(input)

	assert.Equal(t, []string{"high-9", "high-6", "med-7", "med-5", "low-early", "low-late"}, ids(got))
}

func TestPrioritize_ExcludesResolvedAppointments(t *testing.T) {
	open := pending("open", entities.RiskCategoryLow, 2, 0)
	done := pending("done", entities.RiskCategoryHigh, 10, 0)
	done.Status = entities.AppointmentStatusConsulted

	got := Prioritize([]*entities.Appointment{open, done, nil})

	require.Len(t, got, 1)
	assert.Equal(t, "open", got[0].ID)
}

func TestPrioritize_EmptyInput(t *testing.T) {
	got := Prioritize(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = Prioritize([]*entities.Appointment{})
	assert.Empty(t, got)
}

func TestPrioritize_FullTiesKeepInputOrder(t *testing.T) {
	first := pending("first", entities.RiskCategoryMedium, 5, 0)
	second := pending("second", entities.RiskCategoryMedium, 5, 0)
	third := pending("third", entities.RiskCategoryMedium, 5, 0)

	for i := 0; i < 5; i++ {
		got := Prioritize([]*entities.Appointment{first, second, third})
		assert.Equal(t, []string{"first", "second", "third"}, ids(got))
	}
}

func TestPrioritize_DoesNotMutateInput(t *testing.T) {
	input := []*entities.Appointment{
		pending("low", entities.RiskCategoryLow, 1, 0),
		pending("high", entities.RiskCategoryHigh, 9, 10),
	}

	_ = Prioritize(input)

	assert.Equal(t, []string{"low", "high"}, ids(input))
}

func TestCountPending(t *testing.T) {
	resolved := pending("r", entities.RiskCategoryLow, 1, 0)
	resolved.Status = entities.AppointmentStatusNoShow

	assert.Equal(t, 2, CountPending([]*entities.Appointment{
		pending("a", entities.RiskCategoryLow, 1, 0),
		resolved,
		pending("b", entities.RiskCategoryLow, 1, 0),
	}))
	assert.Zero(t, CountPending(nil))
}

func TestEstimateWaitMinutes(t *testing.T) {
	assert.Equal(t, 10, EstimateWaitMinutes(0))
	assert.Equal(t, 55, EstimateWaitMinutes(3))
	assert.Equal(t, 10, EstimateWaitMinutes(-1))
}
