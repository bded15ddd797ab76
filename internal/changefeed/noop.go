package changefeed

import (
	"context"
	"sync"

	"remila_sections/internal/domain"
)

// Noop is used when no broker is configured. Published events are dropped
// and subscriptions stay silent until cancelled.
type Noop struct{}

func (Noop) Publish(context.Context, domain.ChangeEvent) error { return nil }

func (Noop) Subscribe(context.Context, domain.Collection) (<-chan domain.ChangeEvent, func(), error) {
	ch := make(chan domain.ChangeEvent)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }, nil
}
