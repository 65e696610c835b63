package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/priorcare/internal/api/handlers"
	"github.com/zatekoja/priorcare/internal/domain/entities"
	apperrors "github.com/zatekoja/priorcare/pkg/errors"
)

type MockClinicService struct {
	mock.Mock
}

func (m *MockClinicService) Get(ctx context.Context) (*entities.ClinicConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClinicConfig), args.Error(1)
}

func (m *MockClinicService) Update(ctx context.Context, cfg *entities.ClinicConfig) (*entities.ClinicConfig, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClinicConfig), args.Error(1)
}

func TestClinicHandler_GetClinic(t *testing.T) {
	mockService := new(MockClinicService)
	handler := handlers.NewClinicHandler(mockService)

	defaults := entities.DefaultClinicConfig()
	mockService.On("Get", mock.Anything).Return(&defaults, nil)

	req := httptest.NewRequest("GET", "/api/clinic", nil)
	w := httptest.NewRecorder()

	handler.GetClinic(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got entities.ClinicConfig
	decodeBody(t, w, &got)
	assert.Equal(t, "08:00", got.OpeningTime)
	assert.Equal(t, 40, got.MaxPatientsPerDay)
}

func TestClinicHandler_UpdateClinic(t *testing.T) {
	t.Run("saves settings", func(t *testing.T) {
		mockService := new(MockClinicService)
		handler := handlers.NewClinicHandler(mockService)

		body := `{"location":"North Wing","specialization":"Pediatrics","openingTime":"09:00","closingTime":"17:00","maxPatientsPerDay":25,"consultationDuration":20}`
		req := httptest.NewRequest("PUT", "/api/clinic", strings.NewReader(body))
		w := httptest.NewRecorder()

		mockService.On("Update", mock.Anything, mock.MatchedBy(func(cfg *entities.ClinicConfig) bool {
			return cfg.Location == "North Wing" && cfg.ConsultationDurationMinutes == 20
		})).Return(&entities.ClinicConfig{Location: "North Wing", ConsultationDurationMinutes: 20}, nil)

		handler.UpdateClinic(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("maps validation errors to 400", func(t *testing.T) {
		mockService := new(MockClinicService)
		handler := handlers.NewClinicHandler(mockService)

		req := httptest.NewRequest("PUT", "/api/clinic", strings.NewReader(`{"openingTime":"9am"}`))
		w := httptest.NewRecorder()

		mockService.On("Update", mock.Anything, mock.Anything).Return(nil, apperrors.NewValidationError("openingTime must be HH:MM"))

		handler.UpdateClinic(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		mockService := new(MockClinicService)
		handler := handlers.NewClinicHandler(mockService)

		req := httptest.NewRequest("PUT", "/api/clinic", strings.NewReader(""))
		w := httptest.NewRecorder()

		handler.UpdateClinic(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
