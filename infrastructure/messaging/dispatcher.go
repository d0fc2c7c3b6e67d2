package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"goodnight/application/ports"
	"goodnight/domain/events"
)

// Dispatcher delivers domain events synchronously to in-process
// subscribers, then forwards them to an optional external publisher. The
// synchronous pass is what makes cache invalidation visible to the request
// that caused it; the external forward is best effort.
type Dispatcher struct {
	mu        sync.RWMutex
	handlers  []ports.EventHandler
	forwarder ports.EventPublisher
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. forwarder may be nil.
func NewDispatcher(forwarder ports.EventPublisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		forwarder: forwarder,
		logger:    logger,
	}
}

// Subscribe registers an in-process event handler
func (d *Dispatcher) Subscribe(handler ports.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
}

// Publish implements ports.EventPublisher
func (d *Dispatcher) Publish(ctx context.Context, event events.DomainEvent) error {
	d.mu.RLock()
	handlers := make([]ports.EventHandler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			d.logger.Error("event handler failed",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}

	if d.forwarder != nil {
		if err := d.forwarder.Publish(ctx, event); err != nil {
			d.logger.Error("event forward failed",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}

	return nil
}
