// Package changefeed carries content change events from the admin side to
// live widgets.
package changefeed

import (
	"context"

	"remila_sections/internal/domain"
)

// Publisher emits change events.
type Publisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
}

// Subscriber delivers change events for one collection on the returned
// channel. Calling the returned cancel function releases the subscription
// and closes the channel; it is safe to call more than once.
type Subscriber interface {
	Subscribe(ctx context.Context, collection domain.Collection) (<-chan domain.ChangeEvent, func(), error)
}

// RoutingKey is the topic routing key for a collection's events.
func RoutingKey(c domain.Collection) string {
	return "content." + string(c)
}
