// Package events defines the in-process event bus the modules use to talk
// to each other without importing one another: quote lifecycle changes are
// published here and consumed by subscribers such as the email notifier.
// The package itself carries no business logic.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event that crosses module boundaries.
type Event interface {
	// EventName identifies the event type; subscribers key on it.
	EventName() string
	// OccurredAt returns when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all domain events. Embed it and
// implement EventName.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events of a single type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to every handler registered for its name.
	// Delivery is asynchronous; a slow subscriber never blocks the caller.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for every handler to finish.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name, matching the value
	// the event's EventName returns.
	Subscribe(eventName string, handler Handler)
}
