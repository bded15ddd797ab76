package changefeed

import (
	"context"
	"sync"

	"remila_sections/internal/domain"
)

// Memory is an in-process feed. It backs single-instance deployments without
// a broker and is used by tests.
type Memory struct {
	mu     sync.Mutex
	nextID int
	subs   map[domain.Collection]map[int]chan domain.ChangeEvent
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[domain.Collection]map[int]chan domain.ChangeEvent)}
}

// Publish delivers to every current subscriber of the event's collection.
// Slow subscribers miss events rather than block the publisher.
func (m *Memory) Publish(_ context.Context, event domain.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.subs[event.Collection] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, collection domain.Collection) (<-chan domain.ChangeEvent, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan domain.ChangeEvent, 8)
	if m.subs[collection] == nil {
		m.subs[collection] = make(map[int]chan domain.ChangeEvent)
	}
	m.subs[collection][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs[collection], id)
			close(ch)
		})
	}
	return ch, cancel, nil
}

// Subscribers reports how many live subscriptions a collection has.
func (m *Memory) Subscribers(collection domain.Collection) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[collection])
}
