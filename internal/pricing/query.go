package pricing

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"price-resolution-api/internal/models"
)

// Direction represents sort direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

// SortField names a sortable attribute of a price window.
type SortField string

const (
	SortPriority SortField = "priority"
	SortID       SortField = "id"
)

// Order is one sort key of a query.
type Order struct {
	Field     SortField
	Direction Direction
}

// Query is a filtered, sorted and limited request against a Store.
// A Limit of zero means no limit.
type Query struct {
	Filter  Predicate
	OrderBy []Order
	Limit   int
}

// LookupQuery builds the resolution query for a lookup: all three filters combined,
// highest priority first, lowest id first among equal priorities, one row.
func LookupQuery(req models.LookupRequest) Query {
	return Query{
		Filter: And(
			BrandEquals(req.BrandID),
			ProductEquals(req.ProductID),
			TemporalContainment(req.At),
		),
		OrderBy: []Order{
			{Field: SortPriority, Direction: Desc},
			{Field: SortID, Direction: Asc},
		},
		Limit: 1,
	}
}

// Compare orders two windows according to the query's sort keys.
func (q Query) Compare(a, b models.PriceWindow) int {
	for _, o := range q.OrderBy {
		var c int
		switch o.Field {
		case SortPriority:
			c = cmp.Compare(a.Priority, b.Priority)
		case SortID:
			c = cmp.Compare(a.ID, b.ID)
		}
		if o.Direction == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Apply filters, sorts and limits windows in memory. The input is not modified.
func (q Query) Apply(windows []models.PriceWindow) []models.PriceWindow {
	filter := q.Filter
	if filter == nil {
		filter = True{}
	}

	out := make([]models.PriceWindow, 0, len(windows))
	for _, w := range windows {
		if filter.Matches(w) {
			out = append(out, w)
		}
	}

	slices.SortStableFunc(out, q.Compare)

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// String returns a canonical representation, suitable as a cache key.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString("WHERE ")
	if q.Filter == nil {
		b.WriteString(True{}.String())
	} else {
		b.WriteString(q.Filter.String())
	}
	if len(q.OrderBy) > 0 {
		keys := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			dir := "ASC"
			if o.Direction == Desc {
				dir = "DESC"
			}
			keys[i] = string(o.Field) + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ", "))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String()
}
