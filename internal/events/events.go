package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"price-resolution-api/internal/models"
)

// EventType represents the type of event.
type EventType string

const (
	// EventPriceResolved is emitted when a lookup finds an applicable price
	EventPriceResolved EventType = "price.resolved"
	// EventPriceNotFound is emitted when no price window applies to a lookup
	EventPriceNotFound EventType = "price.not_found"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// PriceResolvedData contains data for price resolved events.
type PriceResolvedData struct {
	CorrelationID string
	Request       models.LookupRequest
	Window        models.PriceWindow
}

// PriceNotFoundData contains data for price not found events.
type PriceNotFoundData struct {
	CorrelationID string
	Request       models.LookupRequest
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Manager fans events out to subscribed handlers asynchronously.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	enabled  bool
	logger   *slog.Logger
	inflight sync.WaitGroup
	now      func() time.Time
}

// NewManager creates a new event manager. A disabled manager drops everything.
func NewManager(enabled bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		handlers: make(map[EventType][]Handler),
		enabled:  enabled,
		logger:   logger,
		now:      time.Now,
	}
}

// Enabled reports whether the manager accepts subscriptions and events.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return
	}
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish delivers an event to every subscribed handler on its own goroutine.
// Handlers run detached from the caller's cancellation.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	m.mu.RLock()
	if !m.enabled {
		m.mu.RUnlock()
		return
	}
	handlers := m.handlers[eventType]
	m.inflight.Add(len(handlers))
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: m.now(),
		Data:      data,
	}
	detached := context.WithoutCancel(ctx)

	for _, handler := range handlers {
		go func(h Handler) {
			defer m.inflight.Done()
			if err := h(detached, event); err != nil {
				m.logger.Warn("event handler failed", "event", string(event.Type), "error", err)
			}
		}(handler)
	}
}

// PublishPriceResolved publishes a price resolved event.
func (m *Manager) PublishPriceResolved(ctx context.Context, correlationID string, req models.LookupRequest, window models.PriceWindow) {
	m.Publish(ctx, EventPriceResolved, PriceResolvedData{
		CorrelationID: correlationID,
		Request:       req,
		Window:        window,
	})
}

// PublishPriceNotFound publishes a price not found event.
func (m *Manager) PublishPriceNotFound(ctx context.Context, correlationID string, req models.LookupRequest) {
	m.Publish(ctx, EventPriceNotFound, PriceNotFoundData{
		CorrelationID: correlationID,
		Request:       req,
	})
}

// Wait blocks until handlers started so far have returned.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

// Shutdown stops accepting events and waits for in-flight handlers.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.enabled = false
	m.handlers = make(map[EventType][]Handler)
	m.mu.Unlock()

	m.inflight.Wait()
}
