// Package dispatcher routes domain events to registered handlers.
// Approval notifications run through it so slow deliveries never block
// the request path.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spicon/registration/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Dispatcher routes events to registered handlers
type Dispatcher interface {
	// Subscribe registers a named handler for an event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// Dispatch sends the event to all handlers in registration order and
	// returns the first error
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync runs Dispatch on a background goroutine; handler
	// errors are logged and dropped
	DispatchAsync(ctx context.Context, evt *event.Event)

	// Close stops accepting events and waits for async handlers
	Close() error
}

type namedHandler struct {
	name    string
	handler Handler
}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]namedHandler
	logger   Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(logger Logger) Dispatcher {
	return &eventDispatcher{
		handlers: make(map[event.Type][]namedHandler),
		logger:   logger,
	}
}

func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventType] = append(d.handlers[eventType], namedHandler{name: name, handler: handler})

	if d.logger != nil {
		d.logger.Info("Handler registered",
			"event_type", eventType,
			"handler_name", name,
		)
	}
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return fmt.Errorf("dispatcher is closed")
	}
	return d.dispatch(ctx, evt)
}

// dispatch runs the handlers for an already admitted event. Split from
// Dispatch so async deliveries admitted before Close still complete.
func (d *eventDispatcher) dispatch(ctx context.Context, evt *event.Event) error {
	d.mu.RLock()
	handlers := d.handlers[evt.Type]
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := d.safeExecute(ctx, evt, h); err != nil {
			if d.logger != nil {
				d.logger.Error("Handler error",
					"event_type", evt.Type,
					"event_id", evt.ID,
					"handler_name", h.name,
					"error", err,
				)
			}
			return fmt.Errorf("handler %s failed: %w", h.name, err)
		}
	}
	return nil
}

func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	if d.closed.Load() {
		if d.logger != nil {
			d.logger.Error("Dropping event, dispatcher is closed",
				"event_type", evt.Type,
				"event_id", evt.ID,
			)
		}
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		if err := d.dispatch(ctx, evt); err != nil && d.logger != nil {
			d.logger.Error("Async dispatch error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"error", err,
			)
		}
	}()
}

// safeExecute runs a handler, converting panics into errors
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, h namedHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", h.name, r)
		}
	}()
	return h.handler(ctx, evt)
}

func (d *eventDispatcher) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	d.wg.Wait()
	return nil
}
