package store

import (
	"context"
	"sync"

	"github.com/spendlens/backend/internal/model"
)

// MemoryStore implements Store with in-memory storage, used for local
// development and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[string][]model.Transaction
	settings     map[string]model.Settings
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string][]model.Transaction),
		settings:     make(map[string]model.Settings),
	}
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	txs := m.transactions[userID]
	out := make([]model.Transaction, len(txs))
	copy(out, txs)
	return out, nil
}

func (m *MemoryStore) PutTransactions(ctx context.Context, userID string, txs []model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]model.Transaction, len(txs))
	copy(stored, txs)
	m.transactions[userID] = stored
	return nil
}

func (m *MemoryStore) GetSettings(ctx context.Context, userID string) (model.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	settings, ok := m.settings[userID]
	if !ok {
		return model.DefaultSettings(), nil
	}
	return settings.Clone(), nil
}

func (m *MemoryStore) PutSettings(ctx context.Context, userID string, settings model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[userID] = settings.Clone()
	return nil
}
