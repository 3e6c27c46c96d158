package pricing

import (
	"strconv"
	"strings"
	"time"

	"price-resolution-api/internal/models"
)

// Field names an identifier column of a price window.
type Field string

const (
	FieldProductID Field = "product_id"
	FieldBrandID   Field = "brand_id"
)

// Predicate is a pure boolean filter over price windows. Implementations are plain
// values so that storage adapters can translate them into their own query language.
type Predicate interface {
	// Matches reports whether the window satisfies the predicate.
	Matches(w models.PriceWindow) bool
	// String returns a stable, human-readable form of the predicate.
	String() string

	predicate()
}

// True is the predicate that accepts every window.
type True struct{}

func (True) Matches(models.PriceWindow) bool { return true }
func (True) String() string                  { return "TRUE" }
func (True) predicate()                      {}

// Equals accepts windows whose identifier field equals Value.
type Equals struct {
	Field Field
	Value int64
}

func (p Equals) Matches(w models.PriceWindow) bool {
	switch p.Field {
	case FieldProductID:
		return w.ProductID == p.Value
	case FieldBrandID:
		return w.BrandID == p.Value
	default:
		return false
	}
}

func (p Equals) String() string {
	return string(p.Field) + " = " + strconv.FormatInt(p.Value, 10)
}

func (Equals) predicate() {}

// Contains accepts windows whose [StartDate, EndDate] range includes At.
// Both bounds are inclusive.
type Contains struct {
	At time.Time
}

func (p Contains) Matches(w models.PriceWindow) bool {
	return !p.At.Before(w.StartDate) && !p.At.After(w.EndDate)
}

func (p Contains) String() string {
	return "start_date <= " + p.At.UTC().Format(time.RFC3339Nano) + " <= end_date"
}

func (Contains) predicate() {}

// Conjunction accepts windows that satisfy every term.
type Conjunction []Predicate

func (c Conjunction) Matches(w models.PriceWindow) bool {
	for _, p := range c {
		if !p.Matches(w) {
			return false
		}
	}
	return true
}

func (c Conjunction) String() string {
	parts := make([]string, len(c))
	for i, p := range c {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}

func (Conjunction) predicate() {}

// TemporalContainment filters windows valid at the given instant.
// A zero instant disables temporal filtering.
func TemporalContainment(at time.Time) Predicate {
	if at.IsZero() {
		return True{}
	}
	return Contains{At: at}
}

// BrandEquals filters windows of the given brand. A zero id disables the filter.
func BrandEquals(brandID int64) Predicate {
	if brandID == 0 {
		return True{}
	}
	return Equals{Field: FieldBrandID, Value: brandID}
}

// ProductEquals filters windows of the given product. A zero id disables the filter.
func ProductEquals(productID int64) Predicate {
	if productID == 0 {
		return True{}
	}
	return Equals{Field: FieldProductID, Value: productID}
}

// And combines predicates with logical AND. Nested conjunctions are flattened and
// always-true terms dropped, so And() and And(True{}) both yield True{}.
func And(preds ...Predicate) Predicate {
	var terms Conjunction
	for _, p := range preds {
		switch p := p.(type) {
		case nil, True:
		case Conjunction:
			switch flat := And(p...).(type) {
			case True:
			case Conjunction:
				terms = append(terms, flat...)
			default:
				terms = append(terms, flat)
			}
		default:
			terms = append(terms, p)
		}
	}

	switch len(terms) {
	case 0:
		return True{}
	case 1:
		return terms[0]
	default:
		return terms
	}
}
