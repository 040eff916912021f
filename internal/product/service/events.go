package service

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// DefaultSubjectPrefix is the subject namespace of product events.
const DefaultSubjectPrefix = "products"

// Event types.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

type subjects struct {
	created string
	updated string
	deleted string
}

func newSubjects(prefix string) subjects {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return subjects{
		created: prefix + "." + EventCreated,
		updated: prefix + "." + EventUpdated,
		deleted: prefix + "." + EventDeleted,
	}
}

// ProductEvent announces a committed product change. Deleted events carry only the ID.
type ProductEvent struct {
	Carrier    propagation.MapCarrier `json:"carrier,omitempty"`
	Type       string                 `json:"type"`
	Product    ProductDto             `json:"product"`
	OccurredAt time.Time              `json:"occurred_at"`

	subject string
}

func newProductEvent(ctx context.Context, subject, eventType string, product ProductDto) ProductEvent {
	carrier := make(propagation.MapCarrier)
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return ProductEvent{
		Carrier:    carrier,
		Type:       eventType,
		Product:    product,
		OccurredAt: time.Now().UTC(),
		subject:    subject,
	}
}

func (e ProductEvent) Subject() string {
	return e.subject
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
