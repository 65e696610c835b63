package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/priorcare/internal/domain/entities"
)

// ClinicService defines the interface for clinic settings operations
type ClinicService interface {
	Get(ctx context.Context) (*entities.ClinicConfig, error)
	Update(ctx context.Context, cfg *entities.ClinicConfig) (*entities.ClinicConfig, error)
}

// ClinicHandler handles clinic settings requests
type ClinicHandler struct {
	service ClinicService
}

// NewClinicHandler creates a new clinic handler
func NewClinicHandler(service ClinicService) *ClinicHandler {
	return &ClinicHandler{service: service}
}

// GetClinic handles GET /api/clinic
func (h *ClinicHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.Get(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cfg)
}

// UpdateClinic handles PUT /api/clinic
func (h *ClinicHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	var cfg entities.ClinicConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.service.Update(r.Context(), &cfg)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, saved)
}
