package bus

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/meridian-systems/corebus/ids"
)

// ExternalPublisher is the pluggable side effect behind Publish's
// externalPub flag (spec.md §4.5: "a boolean flag the implementation must
// thread through faithfully"). The bus never blocks core in-process
// delivery on this call's outcome; a publisher error is logged, not
// propagated, since the in-process publish has already succeeded.
type ExternalPublisher interface {
	PublishExternal(ctx context.Context, event cloudevents.Event) error
}

// ExternalPublisherFunc adapts a plain function to ExternalPublisher.
type ExternalPublisherFunc func(ctx context.Context, event cloudevents.Event) error

// PublishExternal implements ExternalPublisher.
func (f ExternalPublisherFunc) PublishExternal(ctx context.Context, event cloudevents.Event) error {
	return f(ctx, event)
}

// buildExternalEvent wraps msg as a CloudEvents envelope for forwarding to
// an ExternalPublisher. The event id is a freshly minted UUID4 so it never
// collides with the bus's own correlation ids.
func buildExternalEvent(source, topic string, msg any) (cloudevents.Event, error) {
	event := cloudevents.NewEvent()
	event.SetID(ids.NewUUID4().String())
	event.SetSource(source)
	event.SetType("systems.meridian.corebus." + topic)
	event.SetTime(time.Now().UTC())
	if err := event.SetData(cloudevents.ApplicationJSON, msg); err != nil {
		return cloudevents.Event{}, err
	}
	return event, nil
}
