package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/providers"
	"github.com/zatekoja/priorcare/internal/infrastructure/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultRationale replaces an empty rationale from the reasoning service.
	DefaultRationale = "Automatic assessment completed."
	// FallbackRationale marks results produced without the reasoning service.
	FallbackRationale = "Preliminary assessment based on keyword matching (AI connection issue)."

	fallbackKeyword = "chest pain"
)

// TriageClassifier scores symptom reports. It delegates to the reasoning service and
// degrades to a keyword heuristic on any failure, so Classify never fails.
type TriageClassifier struct {
	provider providers.TriageAssessmentProvider
	timeout  time.Duration
}

// NewTriageClassifier creates a classifier. A nil provider means every call uses the
// keyword fallback. A zero timeout leaves the deadline to the caller's context.
func NewTriageClassifier(provider providers.TriageAssessmentProvider, timeout time.Duration) *TriageClassifier {
	return &TriageClassifier{
		provider: provider,
		timeout:  timeout,
	}
}

// Classify returns a severity score in [1,10] and a valid risk category.
// Callers are expected to default empty symptoms and age beforehand.
func (c *TriageClassifier) Classify(ctx context.Context, symptoms string, age int, chronicConditions []string) entities.ClassificationResult {
	ctx, span := observability.StartSpan(ctx, "triage.classify")
	defer span.End()

	logger := observability.LoggerFromContext(ctx)

	request := &entities.TriageRequest{
		Symptoms:          symptoms,
		Age:               age,
		ChronicConditions: chronicConditions,
	}

	start := time.Now()
	assessed, err := c.assess(ctx, request)
	if err != nil {
		result := FallbackClassification(symptoms)
		observability.RecordError(span, err)
		recordClassification(ctx, result, time.Since(start))
		logger.Warn().
			Err(err).
			Int("severity_score", result.SeverityScore).
			Str("risk_category", string(result.RiskCategory)).
			Msg("triage assessment unavailable, using keyword fallback")
		return result
	}

	result := NormalizeClassification(assessed)
	recordClassification(ctx, result, time.Since(start))
	logger.Debug().
		Int("severity_score", result.SeverityScore).
		Str("risk_category", string(result.RiskCategory)).
		Dur("duration", time.Since(start)).
		Msg("triage assessment completed")
	return result
}

type assessOutcome struct {
	result *entities.ClassificationResult
	err    error
}

// assess calls the provider in its own goroutine so a provider that ignores its
// context or panics still yields an error within the deadline.
func (c *TriageClassifier) assess(ctx context.Context, request *entities.TriageRequest) (*entities.ClassificationResult, error) {
	if c.provider == nil {
		return nil, errors.New("no triage assessment provider configured")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan assessOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- assessOutcome{err: fmt.Errorf("triage assessment provider panicked: %v", r)}
			}
		}()
		result, err := c.provider.AssessSymptoms(ctx, request)
		done <- assessOutcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("triage assessment aborted: %w", ctx.Err())
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		if out.result == nil {
			return nil, errors.New("triage assessment provider returned no result")
		}
		return out.result, nil
	}
}

// FallbackClassification is the keyword heuristic used when the reasoning service
// cannot be reached.
func FallbackClassification(symptoms string) entities.ClassificationResult {
	if strings.Contains(strings.ToLower(symptoms), fallbackKeyword) {
		return entities.ClassificationResult{
			SeverityScore: 9,
			RiskCategory:  entities.RiskCategoryHigh,
			Rationale:     FallbackRationale,
			Source:        entities.ClassificationSourceFallback,
		}
	}
	return entities.ClassificationResult{
		SeverityScore: 3,
		RiskCategory:  entities.RiskCategoryLow,
		Rationale:     FallbackRationale,
		Source:        entities.ClassificationSourceFallback,
	}
}

// NormalizeClassification fills fields the reasoning service omitted
// (severity 1, LOW, generic rationale) and clamps severity to [1,10].
func NormalizeClassification(in *entities.ClassificationResult) entities.ClassificationResult {
	out := entities.ClassificationResult{
		SeverityScore: entities.MinSeverityScore,
		RiskCategory:  entities.RiskCategoryLow,
		Rationale:     DefaultRationale,
		Source:        entities.ClassificationSourceAI,
	}
	if in == nil {
		return out
	}

	if in.SeverityScore != 0 {
		out.SeverityScore = ClampSeverity(in.SeverityScore)
	}
	if risk, err := entities.ParseRiskCategory(string(in.RiskCategory)); err == nil {
		out.RiskCategory = risk
	}
	if rationale := strings.TrimSpace(in.Rationale); rationale != "" {
		out.Rationale = rationale
	}
	return out
}

// ClampSeverity bounds a score to [1,10].
func ClampSeverity(score int) int {
	return int(math.Max(entities.MinSeverityScore, math.Min(entities.MaxSeverityScore, float64(score))))
}

var (
	triageMetricsOnce          sync.Once
	triageClassificationCount  metric.Int64Counter
	triageClassificationTiming metric.Float64Histogram
)

func ensureTriageMetrics() {
	triageMetricsOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/priorcare/triage")

		count, err := meter.Int64Counter(
			"triage.classification.count",
			metric.WithDescription("Number of triage classifications by source"),
		)
		if err != nil {
			return
		}
		timing, err := meter.Float64Histogram(
			"triage.classification.duration",
			metric.WithDescription("Triage classification duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		triageClassificationCount = count
		triageClassificationTiming = timing
	})
}

func recordClassification(ctx context.Context, result entities.ClassificationResult, duration time.Duration) {
	ensureTriageMetrics()
	if triageClassificationCount == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("triage.source", string(result.Source)),
		attribute.String("triage.risk_category", string(result.RiskCategory)),
	)
	triageClassificationCount.Add(ctx, 1, attrs)
	triageClassificationTiming.Record(ctx, float64(duration.Milliseconds()), attrs)
}
