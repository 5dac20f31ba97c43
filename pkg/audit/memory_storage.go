package audit

import (
	"context"
	"slices"
	"sync"
)

// MemoryStorage keeps events in process. It implements Storage, BatchStorage
// and Reader.
type MemoryStorage struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Store(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *MemoryStorage) StoreBatch(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MemoryStorage) FindEvents(_ context.Context, c Criteria) ([]Event, error) {
	c = c.Normalize()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Event, 0, c.Limit)
	for _, e := range slices.Backward(m.events) {
		if len(out) == c.Limit {
			break
		}
		if e.UserID != c.UserID {
			continue
		}
		if c.Action != "" && e.Action != c.Action {
			continue
		}
		if !c.Since.IsZero() && e.CreatedAt.Before(c.Since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Len reports how many events are stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
