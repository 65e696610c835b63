package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/priorcare/internal/application/services"
	"github.com/zatekoja/priorcare/internal/domain/entities"
)

// AppointmentService defines the interface for appointment operations
type AppointmentService interface {
	Submit(ctx context.Context, input services.SubmissionInput) (*entities.Appointment, error)
	Assess(ctx context.Context, input services.SubmissionInput) (entities.ClassificationResult, error)
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error)
	GetQueue(ctx context.Context) ([]*entities.Appointment, error)
	Get(ctx context.Context, id string) (*entities.Appointment, error)
	List(ctx context.Context, patientID string) ([]*entities.Appointment, error)
	Stats(ctx context.Context) (*entities.QueueStats, error)
}

// AppointmentHandler handles appointment and triage requests
type AppointmentHandler struct {
	service AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
	}
}

// ClassifySymptoms handles POST /api/triage/classify
func (h *AppointmentHandler) ClassifySymptoms(w http.ResponseWriter, r *http.Request) {
	var input services.SubmissionInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Assess(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ListTriageOptions handles GET /api/triage/options
func (h *AppointmentHandler) ListTriageOptions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symptoms":          entities.SymptomOptions,
		"chronicConditions": entities.ChronicConditionOptions,
		"riskCategories":    entities.RiskCategories,
	})
}

// SubmitAppointment handles POST /api/appointments
func (h *AppointmentHandler) SubmitAppointment(w http.ResponseWriter, r *http.Request) {
	var input services.SubmissionInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	appointment, err := h.service.Submit(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// ListAppointments handles GET /api/appointments?patientId=
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.service.List(r.Context(), r.URL.Query().Get("patientId"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// GetAppointment handles GET /api/appointments/{id}
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	appointment, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/appointments/{id}/status
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, err := entities.ParseAppointmentStatus(req.Status)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	appointment, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

// GetQueue handles GET /api/queue
func (h *AppointmentHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	queue, err := h.service.GetQueue(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queue": queue,
		"count": len(queue),
	})
}

// GetQueueStats handles GET /api/analytics/queue
func (h *AppointmentHandler) GetQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
