package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/priorcare/internal/domain/entities"
	"github.com/zatekoja/priorcare/internal/domain/providers"
	"github.com/zatekoja/priorcare/internal/infrastructure/observability"
)

// QueueInvalidator drops a cached queue view
type QueueInvalidator interface {
	InvalidateQueue(ctx context.Context) error
}

// QueueCacheInvalidationService drops the cached queue whenever any replica publishes
// a queue event, so every instance re-derives the ordering on its next read.
type QueueCacheInvalidationService struct {
	invalidator QueueInvalidator
	eventBus    providers.EventBus
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewQueueCacheInvalidationService creates a new queue cache invalidation service
func NewQueueCacheInvalidationService(invalidator QueueInvalidator, eventBus providers.EventBus) *QueueCacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &QueueCacheInvalidationService{
		invalidator: invalidator,
		eventBus:    eventBus,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Start begins listening for queue events
func (s *QueueCacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelQueueUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to queue updates: %w", err)
	}

	go s.processEvents(eventChan)
	observability.GetLogger().Info().Msg("queue cache invalidation service started")
	return nil
}

// Stop stops the service and waits for the event loop to exit
func (s *QueueCacheInvalidationService) Stop() {
	s.cancel()
	<-s.done
	observability.GetLogger().Info().Msg("queue cache invalidation service stopped")
}

func (s *QueueCacheInvalidationService) processEvents(eventChan <-chan *entities.QueueEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *QueueCacheInvalidationService) handleEvent(event *entities.QueueEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := observability.GetLogger()
	if err := s.invalidator.InvalidateQueue(ctx); err != nil {
		logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to invalidate queue cache")
		return
	}
	logger.Debug().
		Str("event_id", event.ID).
		Str("appointment_id", event.AppointmentID).
		Str("event_type", string(event.EventType)).
		Msg("queue cache invalidated")
}
