package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/providers"
	"github.com/zatekoja/priorcare/internal/domain/repositories"
	"github.com/zatekoja/priorcare/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/priorcare/pkg/errors"
	"github.com/zatekoja/priorcare/pkg/validation"
	"golang.org/x/sync/singleflight"
)

const (
	// QueueCacheKey holds the prioritized PENDING queue
	QueueCacheKey = "queue:pending"

	queueLoadTimeout = 10 * time.Second

	defaultPatientID   = "guest"
	defaultPatientName = "Guest Patient"
	defaultPatientAge  = 30
)

// SymptomClassifier scores a symptom report; it never fails.
type SymptomClassifier interface {
	Classify(ctx context.Context, symptoms string, age int, chronicConditions []string) entities.ClassificationResult
}

// SubmissionInput is a patient's triage request as collected by the form.
type SubmissionInput struct {
	PatientID         string   `json:"patientId" validate:"max=64"`
	PatientName       string   `json:"patientName" validate:"max=120"`
	PatientAge        int      `json:"patientAge" validate:"gte=0,lte=130"`
	SelectedSymptoms  []string `json:"selectedSymptoms" validate:"max=20,dive,max=100"`
	Symptoms          string   `json:"symptoms" validate:"max=4000"`
	ChronicConditions []string `json:"chronicConditions" validate:"max=20,dive,max=100"`
	PreferredWindow   string   `json:"preferredWindow"`
	ScheduledTime     *string  `json:"scheduledTime,omitempty" validate:"omitempty,max=40"`
}

// AppointmentService owns the appointment set: it classifies submissions, serializes
// every mutation through one writer and serves the prioritized queue.
type AppointmentService struct {
	repo          repositories.AppointmentRepository
	classifier    SymptomClassifier
	cache         providers.CacheProvider
	eventBus      providers.EventBus
	queueCacheTTL time.Duration
	now           func() time.Time

	// writeMu serialises mutations. Queue fills hold the read side so a
	// mutation cannot land between a fill's snapshot and its cache write.
	writeMu         sync.RWMutex
	lastRequestTime time.Time

	queueLoads   singleflight.Group
	queueVersion atomic.Uint64
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(repo repositories.AppointmentRepository, classifier SymptomClassifier) *AppointmentService {
	return &AppointmentService{
		repo:          repo,
		classifier:    classifier,
		queueCacheTTL: 30 * time.Second,
		now:           time.Now,
	}
}

// SetQueueCache enables caching of the prioritized queue
func (s *AppointmentService) SetQueueCache(cache providers.CacheProvider, ttl time.Duration) {
	s.cache = cache
	if ttl > 0 {
		s.queueCacheTTL = ttl
	}
}

// SetEventBus sets the event bus that receives a QueueEvent per mutation
func (s *AppointmentService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// Assess classifies a submission without storing it.
func (s *AppointmentService) Assess(ctx context.Context, input SubmissionInput) (entities.ClassificationResult, error) {
	prepared, err := prepareSubmission(input)
	if err != nil {
		return entities.ClassificationResult{}, err
	}
	return s.classifier.Classify(ctx, prepared.symptoms, prepared.age, prepared.conditions), nil
}

// Submit classifies a patient's report and appends it to the queue as PENDING.
// The estimated wait is fixed from the PENDING count at the moment of the append.
func (s *AppointmentService) Submit(ctx context.Context, input SubmissionInput) (*entities.Appointment, error) {
	ctx, span := observability.StartSpan(ctx, "appointments.submit")
	defer span.End()

	prepared, err := prepareSubmission(input)
	if err != nil {
		return nil, err
	}

	// Classification is the only suspension point; it runs outside the writer.
	classification := s.classifier.Classify(ctx, prepared.symptoms, prepared.age, prepared.conditions)

	appointment, err := s.appendPending(ctx, prepared, classification)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	s.afterMutation(ctx, appointment, entities.QueueEventTypeSubmitted)

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", appointment.ID).
		Str("risk_category", string(appointment.RiskCategory)).
		Int("severity_score", appointment.SeverityScore).
		Int("estimated_wait_minutes", appointment.EstimatedWaitMinutes).
		Str("classification_source", string(classification.Source)).
		Msg("appointment submitted")

	return appointment, nil
}

func (s *AppointmentService) appendPending(ctx context.Context, in *preparedSubmission, classification entities.ClassificationResult) (*entities.Appointment, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	pendingNow, err := s.repo.List(ctx, repositories.AppointmentFilter{Status: entities.AppointmentStatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot pending queue: %w", err)
	}

	requestTime := s.nextRequestTime()
	appointment := &entities.Appointment{
		ID:                   uuid.New().String(),
		PatientID:            in.patientID,
		PatientName:          in.patientName,
		PatientAge:           in.age,
		Symptoms:             in.symptoms,
		ChronicConditions:    in.conditions,
		SeverityScore:        classification.SeverityScore,
		RiskCategory:         classification.RiskCategory,
		PreferredWindow:      in.window,
		RequestTime:          requestTime,
		ScheduledTime:        in.scheduledTime,
		Status:               entities.AppointmentStatusPending,
		EstimatedWaitMinutes: EstimateWaitMinutes(CountPending(pendingNow)),
		AIReasoning:          classification.Rationale,
		UpdatedAt:            requestTime,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to save appointment: %w", err)
	}
	return appointment, nil
}

// nextRequestTime keeps request times strictly increasing within this writer.
func (s *AppointmentService) nextRequestTime() time.Time {
	t := s.now().UTC()
	if !t.After(s.lastRequestTime) {
		t = s.lastRequestTime.Add(time.Microsecond)
	}
	s.lastRequestTime = t
	return t
}

// UpdateStatus resolves a PENDING appointment. Resolved appointments never return to PENDING.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("appointment id is required")
	}
	if !status.IsTerminal() {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"status must be one of %s, %s, %s, %s",
			entities.AppointmentStatusConsulted,
			entities.AppointmentStatusEmergency,
			entities.AppointmentStatusReferred,
			entities.AppointmentStatusNoShow,
		))
	}

	s.writeMu.Lock()
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	s.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, updated, entities.QueueEventTypeStatusChanged)

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", updated.ID).
		Str("status", string(updated.Status)).
		Msg("appointment status updated")

	return updated, nil
}

// GetQueue returns the PENDING appointments in clinical priority order.
func (s *AppointmentService) GetQueue(ctx context.Context) ([]*entities.Appointment, error) {
	if queue, ok := s.cachedQueue(ctx); ok {
		return queue, nil
	}

	v, err, _ := s.queueLoads.Do(QueueCacheKey, func() (interface{}, error) {
		// The fill is shared by every coalesced caller, so one caller
		// going away must not fail the rest.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queueLoadTimeout)
		defer cancel()
		return s.loadQueue(loadCtx)
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a singleflight result get their own slice.
	shared := v.([]*entities.Appointment)
	return append(make([]*entities.Appointment, 0, len(shared)), shared...), nil
}

func (s *AppointmentService) loadQueue(ctx context.Context) ([]*entities.Appointment, error) {
	s.writeMu.RLock()
	defer s.writeMu.RUnlock()

	version := s.queueVersion.Load()

	snapshot, err := s.repo.List(ctx, repositories.AppointmentFilter{Status: entities.AppointmentStatusPending})
	if err != nil {
		return nil, err
	}
	queue := Prioritize(snapshot)

	if s.queueVersion.Load() != version {
		return queue, nil
	}
	s.storeQueue(ctx, queue)

	// An invalidation that raced the write (another replica's event) wins.
	if s.queueVersion.Load() != version && s.cache != nil {
		if err := s.cache.Delete(ctx, QueueCacheKey); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to drop raced queue cache entry")
		}
	}
	return queue, nil
}

func (s *AppointmentService) cachedQueue(ctx context.Context) ([]*entities.Appointment, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, QueueCacheKey)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("queue cache read failed")
		}
		return nil, false
	}
	var queue []*entities.Appointment
	if err := json.Unmarshal(data, &queue); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("discarding unreadable queue cache entry")
		return nil, false
	}
	return queue, true
}

func (s *AppointmentService) storeQueue(ctx context.Context, queue []*entities.Appointment) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(queue)
	if err != nil {
		return
	}
	ttl := int(s.queueCacheTTL.Seconds())
	if ttl < 1 {
		ttl = 1
	}
	if err := s.cache.Set(ctx, QueueCacheKey, data, ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("queue cache write failed")
	}
}

// InvalidateQueue drops the cached queue so the next read re-derives it.
func (s *AppointmentService) InvalidateQueue(ctx context.Context) error {
	s.queueVersion.Add(1)
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, QueueCacheKey)
}

func (s *AppointmentService) afterMutation(ctx context.Context, appointment *entities.Appointment, eventType entities.QueueEventType) {
	logger := observability.LoggerFromContext(ctx)

	if err := s.InvalidateQueue(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate queue cache")
	}

	if s.eventBus == nil {
		return
	}
	event := entities.NewQueueEvent(appointment, eventType)
	if err := s.eventBus.Publish(ctx, providers.EventChannelQueueUpdates, event); err != nil {
		logger.Warn().Err(err).Str("appointment_id", appointment.ID).Msg("failed to publish queue event")
	}
}

// Get retrieves one appointment
func (s *AppointmentService) Get(ctx context.Context, id string) (*entities.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns appointments including resolved ones, optionally for one patient.
func (s *AppointmentService) List(ctx context.Context, patientID string) ([]*entities.Appointment, error) {
	return s.repo.List(ctx, repositories.AppointmentFilter{PatientID: strings.TrimSpace(patientID)})
}

// Stats summarises the whole appointment set for the doctor dashboard.
func (s *AppointmentService) Stats(ctx context.Context) (*entities.QueueStats, error) {
	all, err := s.repo.List(ctx, repositories.AppointmentFilter{})
	if err != nil {
		return nil, err
	}
	return ComputeQueueStats(all), nil
}

// ComputeQueueStats derives dashboard figures from a snapshot.
func ComputeQueueStats(appointments []*entities.Appointment) *entities.QueueStats {
	stats := &entities.QueueStats{
		RiskDistribution:   make(map[entities.RiskCategory]int, len(entities.RiskCategories)),
		StatusDistribution: make(map[entities.AppointmentStatus]int, len(entities.AppointmentStatuses)),
	}
	for _, r := range entities.RiskCategories {
		stats.RiskDistribution[r] = 0
	}
	for _, st := range entities.AppointmentStatuses {
		stats.StatusDistribution[st] = 0
	}

	waitTotal := 0
	for _, a := range appointments {
		if a == nil {
			continue
		}
		stats.TotalAppointments++
		stats.RiskDistribution[a.RiskCategory]++
		stats.StatusDistribution[a.Status]++

		switch {
		case a.IsPending():
			stats.PendingCount++
			waitTotal += a.EstimatedWaitMinutes
			if a.RiskCategory == entities.RiskCategoryHigh {
				stats.HighRiskPendingCount++
			}
		case a.Status == entities.AppointmentStatusConsulted:
			stats.ConsultedCount++
		}
	}

	if stats.PendingCount > 0 {
		stats.AverageWaitMinutes = float64(waitTotal) / float64(stats.PendingCount)
	}
	return stats
}

type preparedSubmission struct {
	patientID     string
	patientName   string
	age           int
	symptoms      string
	conditions    []string
	window        entities.PreferredWindow
	scheduledTime *string
}

// prepareSubmission applies the form's defaults and rejects shapes the core cannot score.
func prepareSubmission(input SubmissionInput) (*preparedSubmission, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	window, err := entities.ParsePreferredWindow(input.PreferredWindow)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	symptoms := CombineSymptoms(input.SelectedSymptoms, input.Symptoms)
	if symptoms == "" {
		return nil, apperrors.NewValidationError("symptoms are required")
	}

	p := &preparedSubmission{
		patientID:     strings.TrimSpace(input.PatientID),
		patientName:   strings.TrimSpace(input.PatientName),
		age:           input.PatientAge,
		symptoms:      symptoms,
		conditions:    NormalizeConditions(input.ChronicConditions),
		window:        window,
		scheduledTime: input.ScheduledTime,
	}
	if p.patientID == "" {
		p.patientID = defaultPatientID
	}
	if p.patientName == "" {
		p.patientName = defaultPatientName
	}
	if p.age <= 0 {
		p.age = defaultPatientAge
	}
	return p, nil
}

// CombineSymptoms joins the selected symptom tags and the free-text description.
func CombineSymptoms(selected []string, text string) string {
	parts := make([]string, 0, len(selected)+1)
	for _, s := range selected {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if text = strings.TrimSpace(text); text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, ", ")
}

// NormalizeConditions trims, de-duplicates and drops the "None" placeholder.
// The result is never nil.
func NormalizeConditions(conditions []string) []string {
	out := make([]string, 0, len(conditions))
	seen := make(map[string]struct{}, len(conditions))
	for _, c := range conditions {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || key == "none" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
