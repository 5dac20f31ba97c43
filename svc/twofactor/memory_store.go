package twofactor

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a Store kept in process memory. Users must be added with
// AddUser before they can be updated.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]SecurityFields
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]SecurityFields)}
}

// AddUser registers a user with empty two-factor state.
func (m *MemoryStore) AddUser(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		m.users[userID] = SecurityFields{}
	}
}

func (m *MemoryStore) FindSecurityFields(_ context.Context, userID string) (*SecurityFields, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	f.BackupCodes = slices.Clone(f.BackupCodes)
	if f.VerifiedAt != nil {
		at := *f.VerifiedAt
		f.VerifiedAt = &at
	}
	return &f, nil
}

func (m *MemoryStore) UpdateSecurityFields(_ context.Context, userID string, patch SecurityPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}

	if patch.Enabled != nil {
		f.Enabled = *patch.Enabled
	}
	if patch.Secret != nil {
		f.Secret = *patch.Secret
	}
	if patch.BackupCodes != nil {
		f.BackupCodes = slices.Clone(*patch.BackupCodes)
	}
	if patch.VerifiedAt != nil {
		if patch.VerifiedAt.IsZero() {
			f.VerifiedAt = nil
		} else {
			at := *patch.VerifiedAt
			f.VerifiedAt = &at
		}
	}

	m.users[userID] = f
	return nil
}

func (m *MemoryStore) ConsumeBackupCode(_ context.Context, userID, codeHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.users[userID]
	if !ok {
		return false, ErrUserNotFound
	}

	i := slices.Index(f.BackupCodes, codeHash)
	if i < 0 {
		return false, nil
	}
	f.BackupCodes = slices.Delete(slices.Clone(f.BackupCodes), i, i+1)
	m.users[userID] = f
	return true, nil
}
