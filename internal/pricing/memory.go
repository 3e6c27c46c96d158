package pricing

import (
	"context"
	"sync"

	"price-resolution-api/internal/models"
)

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	windows []models.PriceWindow
}

// NewMemoryStore creates a store holding the given windows.
func NewMemoryStore(windows ...models.PriceWindow) *MemoryStore {
	return &MemoryStore{windows: append([]models.PriceWindow(nil), windows...)}
}

// Add appends windows to the store.
func (s *MemoryStore) Add(windows ...models.PriceWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.windows = append(s.windows, windows...)
}

// Find implements Store.
func (s *MemoryStore) Find(ctx context.Context, q Query) ([]models.PriceWindow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return q.Apply(s.windows), nil
}
