package events

import (
	"context"
	"fmt"
)

// Handler reacts to a single delivered event
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the wrapped function
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Dispatcher delivers committed events to registered handlers. The handler
// table is frozen at construction; there is no registration after the serving
// phase begins.
type Dispatcher struct {
	handlers map[Kind][]Handler
}

// RegistryBuilder collects handler registrations during startup.
// Build produces the immutable Dispatcher; the builder must not be reused
// concurrently with dispatch.
type RegistryBuilder struct {
	handlers map[Kind][]Handler
}

// NewRegistryBuilder creates an empty registry builder
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{handlers: make(map[Kind][]Handler)}
}

// Register adds a handler for an event kind
func (b *RegistryBuilder) Register(kind Kind, handler Handler) *RegistryBuilder {
	b.handlers[kind] = append(b.handlers[kind], handler)
	return b
}

// RegisterFunc adds a handler function for an event kind
func (b *RegistryBuilder) RegisterFunc(kind Kind, fn HandlerFunc) *RegistryBuilder {
	return b.Register(kind, fn)
}

// Build freezes the registrations into a Dispatcher
func (b *RegistryBuilder) Build() *Dispatcher {
	frozen := make(map[Kind][]Handler, len(b.handlers))
	for kind, hs := range b.handlers {
		frozen[kind] = append([]Handler(nil), hs...)
	}
	return &Dispatcher{handlers: frozen}
}

// Dispatch delivers each event to all handlers registered for its kind, in
// slice order, awaiting each handler before moving on. The first handler
// error aborts delivery and propagates to the caller; the default command
// handler pattern treats that as a request failure rather than swallowing it.
func (d *Dispatcher) Dispatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		for _, handler := range d.handlers[event.Kind] {
			if err := handler.Handle(ctx, event); err != nil {
				return fmt.Errorf("dispatch %s for aggregate %s: %w", event.Kind, event.AggregateID, err)
			}
		}
	}
	return nil
}
