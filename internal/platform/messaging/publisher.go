// Package messaging publishes domain events to subscribers outside the process.
package messaging

import (
	"context"
)

// Event is a message with a routing subject.
type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
