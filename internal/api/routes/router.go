package routes

import (
	"net/http"

	"github.com/zatekoja/priorcare/internal/api/handlers"
	"github.com/zatekoja/priorcare/internal/api/middleware"
	"github.com/zatekoja/priorcare/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	appointmentHandler *handlers.AppointmentHandler
	clinicHandler      *handlers.ClinicHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	appointmentHandler *handlers.AppointmentHandler,
	clinicHandler *handlers.ClinicHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		appointmentHandler: appointmentHandler,
		clinicHandler:      clinicHandler,
		allowedOrigins:     allowedOrigins,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Triage endpoints
	r.mux.HandleFunc("GET /api/triage/options", r.appointmentHandler.ListTriageOptions)
	r.mux.HandleFunc("POST /api/triage/classify", r.appointmentHandler.ClassifySymptoms)

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.SubmitAppointment)
	r.mux.HandleFunc("GET /api/appointments", r.appointmentHandler.ListAppointments)
	r.mux.HandleFunc("GET /api/appointments/{id}", r.appointmentHandler.GetAppointment)
	r.mux.HandleFunc("PATCH /api/appointments/{id}/status", r.appointmentHandler.UpdateStatus)

	// Queue endpoints
	r.mux.HandleFunc("GET /api/queue", r.appointmentHandler.GetQueue)

	// Analytics endpoints
	r.mux.HandleFunc("GET /api/analytics/queue", r.appointmentHandler.GetQueueStats)

	// Clinic settings endpoints
	r.mux.HandleFunc("GET /api/clinic", r.clinicHandler.GetClinic)
	r.mux.HandleFunc("PUT /api/clinic", r.clinicHandler.UpdateClinic)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	// CORS wraps everything so preflights never reach the mux
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
