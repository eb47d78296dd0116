package events

import "context"

// Publisher pushes domain events onto the external bus. Implementations must
// be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards events. Used when the bus is absent (tests, local runs).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
