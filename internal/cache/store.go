package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"price-resolution-api/internal/models"
	"price-resolution-api/internal/pricing"
)

const keyPrefix = "prices:"

// Store is a read-through cache in front of a pricing.Store. Entries are keyed by the
// query's canonical text and expire after ttl. Cache failures degrade to the
// underlying store; store failures are never cached.
type Store struct {
	next   pricing.Store
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore wraps next with a cache.
func NewStore(next pricing.Store, c Cache, ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{next: next, cache: c, ttl: ttl, logger: logger}
}

// Find implements pricing.Store.
func (s *Store) Find(ctx context.Context, q pricing.Query) ([]models.PriceWindow, error) {
	key := keyPrefix + q.String()

	var cached []models.PriceWindow
	err := GetJSON(ctx, s.cache, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.WarnContext(ctx, "price cache read failed", "key", key, "error", err)
	}

	windows, err := s.next.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := SetJSON(ctx, s.cache, key, windows, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "price cache write failed", "key", key, "error", err)
	}

	return windows, nil
}

var _ pricing.Store = (*Store)(nil)
