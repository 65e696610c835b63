package memory

import (
	"context"
	"sync"

	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/repositories"
)

// ClinicStore keeps the clinic settings in process memory
type ClinicStore struct {
	mu  sync.RWMutex
	cfg entities.ClinicConfig
}

// NewClinicStore creates a store holding the default settings
func NewClinicStore() *ClinicStore {
	return &ClinicStore{cfg: entities.DefaultClinicConfig()}
}

var _ repositories.ClinicRepository = (*ClinicStore)(nil)

// Get returns a copy of the settings
func (s *ClinicStore) Get(ctx context.Context) (*entities.ClinicConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	return &cfg, nil
}

// Save replaces the settings
func (s *ClinicStore) Save(ctx context.Context, cfg *entities.ClinicConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = *cfg
	return nil
}
