package token

import (
	"context"
	"sync"
)

// MemoryStore implements VerificationStore and RefreshStore in process memory.
type MemoryStore struct {
	mu            sync.Mutex
	verifications map[string]VerificationToken // by token value
	refreshes     map[string]RefreshToken      // by token value
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		verifications: make(map[string]VerificationToken),
		refreshes:     make(map[string]RefreshToken),
	}
}

func (m *MemoryStore) FindVerificationToken(_ context.Context, token string) (*VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.verifications[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &t, nil
}

func (m *MemoryStore) DeleteVerificationToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.verifications[token]; !ok {
		return ErrTokenNotFound
	}
	delete(m.verifications, token)
	return nil
}

func (m *MemoryStore) DeleteVerificationTokensByIdentifier(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteByIdentifier(identifier)
	return nil
}

func (m *MemoryStore) CreateVerificationToken(_ context.Context, t VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.verifications[t.Token] = t
	return nil
}

// ReplaceVerificationToken deletes earlier tokens for t.Identifier and stores
// t under one lock.
func (m *MemoryStore) ReplaceVerificationToken(_ context.Context, t VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteByIdentifier(t.Identifier)
	m.verifications[t.Token] = t
	return nil
}

func (m *MemoryStore) deleteByIdentifier(identifier string) {
	for k, v := range m.verifications {
		if v.Identifier == identifier {
			delete(m.verifications, k)
		}
	}
}

func (m *MemoryStore) FindRefreshToken(_ context.Context, token string) (*RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.refreshes[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return &t, nil
}

func (m *MemoryStore) CreateRefreshToken(_ context.Context, t RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refreshes[t.Token] = t
	return nil
}

func (m *MemoryStore) DeleteRefreshToken(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range m.refreshes {
		if v.ID == id {
			delete(m.refreshes, k)
			return nil
		}
	}
	return ErrTokenNotFound
}

// CountVerificationTokens returns how many live tokens exist for identifier.
func (m *MemoryStore) CountVerificationTokens(identifier string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, v := range m.verifications {
		if v.Identifier == identifier {
			n++
		}
	}
	return n
}
