package routes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/priorcare/internal/adapters/events"
	"github.com/zatekoja/priorcare/internal/adapters/memory"
	"github.com/zatekoja/priorcare/internal/api/handlers"
	"github.com/zatekoja/priorcare/internal/api/routes"
	"github.com/zatekoja/priorcare/internal/application/services"
	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/providers"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, providers.ErrCacheMiss
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	bus := events.NewMemoryEventBus()
	t.Cleanup(func() { _ = bus.Close() })
	cache := newMapCache()

	appointmentService := services.NewAppointmentService(memory.NewAppointmentStore(), services.NewTriageClassifier(nil, 0))
	appointmentService.SetEventBus(bus)
	appointmentService.SetQueueCache(cache, time.Minute)

	invalidation := services.NewQueueCacheInvalidationService(appointmentService, bus)
	require.NoError(t, invalidation.Start())
	t.Cleanup(invalidation.Stop)
	clinicService := services.NewClinicService(memory.NewClinicStore())

	router := routes.NewRouter(
		handlers.NewAppointmentHandler(appointmentService),
		handlers.NewClinicHandler(clinicService),
		nil,
		nil,
	)

	server := httptest.NewServer(router.SetupRoutes())
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestRouter_Health(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, "GET", server.URL+"/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestRouter_TriageFlow(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, "POST", server.URL+"/api/appointments", `{"patientId":"p1","patientAge":40,"symptoms":"mild headache"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var low entities.Appointment
	require.NoError(t, json.Unmarshal(body, &low))
	assert.Equal(t, entities.RiskCategoryLow, low.RiskCategory)
	assert.Equal(t, 10, low.EstimatedWaitMinutes)

	resp, body = do(t, "POST", server.URL+"/api/appointments", `{"patientId":"p2","patientAge":61,"selectedSymptoms":["Chest Pain"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var high entities.Appointment
	require.NoError(t, json.Unmarshal(body, &high))
	assert.Equal(t, entities.RiskCategoryHigh, high.RiskCategory)
	assert.Equal(t, 25, high.EstimatedWaitMinutes)

	resp, body = do(t, "GET", server.URL+"/api/queue", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var queue struct {
		Queue []entities.Appointment `json:"queue"`
	}
	require.NoError(t, json.Unmarshal(body, &queue))
	require.Len(t, queue.Queue, 2)
	assert.Equal(t, high.ID, queue.Queue[0].ID)
	assert.Equal(t, low.ID, queue.Queue[1].ID)

	resp, _ = do(t, "PATCH", server.URL+"/api/appointments/"+high.ID+"/status", `{"status":"CONSULTED"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, "PATCH", server.URL+"/api/appointments/"+high.ID+"/status", `{"status":"NO_SHOW"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, "GET", server.URL+"/api/queue", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &queue))
	require.Len(t, queue.Queue, 1)
	assert.Equal(t, low.ID, queue.Queue[0].ID)

	resp, body = do(t, "GET", server.URL+"/api/appointments?patientId=p2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Count)

	resp, body = do(t, "GET", server.URL+"/api/analytics/queue", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats entities.QueueStats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.PendingCount)
	assert.Equal(t, 1, stats.ConsultedCount)
}

func TestRouter_NotFoundAndMethodRouting(t *testing.T) {
	server := newTestServer(t)

	resp, _ := do(t, "GET", server.URL+"/api/appointments/unknown", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, "DELETE", server.URL+"/api/queue", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRouter_ClinicSettings(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, "GET", server.URL+"/api/clinic", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cfg entities.ClinicConfig
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, entities.DefaultClinicConfig().Location, cfg.Location)

	resp, _ = do(t, "PUT", server.URL+"/api/clinic", `{"location":"East Wing","specialization":"Cardiology","openingTime":"07:30","closingTime":"16:00","maxPatientsPerDay":30,"consultationDuration":20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, "GET", server.URL+"/api/clinic", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, "East Wing", cfg.Location)
	assert.Equal(t, 20, cfg.ConsultationDurationMinutes)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/appointments/a1/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://clinic.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
