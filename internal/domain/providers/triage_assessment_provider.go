package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/priorcare/internal/domain/entities"
)

// ErrTriageAssessmentUnauthorized is returned when the reasoning service rejects our credentials.
var ErrTriageAssessmentUnauthorized = errors.New("triage assessment provider unauthorized")

// TriageAssessmentProvider is the external reasoning service that scores a symptom report.
// Implementations may leave fields zero when the service omitted them; the classifier
// fills in defaults.
type TriageAssessmentProvider interface {
	AssessSymptoms(ctx context.Context, request *entities.TriageRequest) (*entities.ClassificationResult, error)
}
