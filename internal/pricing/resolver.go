// Package pricing resolves the applicable price window for a product, brand and
// instant among possibly overlapping, priority-ranked windows.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"price-resolution-api/internal/models"
)

// ErrStore marks failures of the underlying record store.
var ErrStore = errors.New("price store failure")

// Store is the record store the resolver reads from.
type Store interface {
	// Find returns the windows matching q.Filter, ordered by q.OrderBy and
	// truncated to q.Limit.
	Find(ctx context.Context, q Query) ([]models.PriceWindow, error)
}

// Resolution is the outcome of a lookup: either a single window or nothing.
type Resolution struct {
	window models.PriceWindow
	found  bool
}

// Found reports whether a window applies.
func (r Resolution) Found() bool {
	return r.found
}

// Window returns the resolved window and true, or a zero window and false.
func (r Resolution) Window() (models.PriceWindow, bool) {
	return r.window, r.found
}

// Resolver selects the highest-priority price window valid at an instant.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver reading from store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the window for req.ProductID and req.BrandID whose range contains
// req.At with the greatest priority. Among equal priorities the lowest id wins.
// No match yields an empty Resolution and a nil error.
func (r *Resolver) Resolve(ctx context.Context, req models.LookupRequest) (Resolution, error) {
	q := LookupQuery(req)

	candidates, err := r.store.Find(ctx, q)
	if err != nil {
		if errors.Is(err, ErrStore) {
			return Resolution{}, err
		}
		return Resolution{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	// The store contract already filters, sorts and limits; re-applying it in memory
	// keeps the tie-break independent of the engine's default ordering.
	matches := q.Apply(candidates)
	if len(matches) == 0 {
		return Resolution{}, nil
	}

	return Resolution{window: matches[0], found: true}, nil
}
