package database

import (
	"fmt"
	"strings"

	"price-resolution-api/internal/pricing"
)

var priceColumns = []string{
	"price_list", "product_id", "brand_id", "start_date", "end_date", "priority", "curr", "price",
}

var filterColumns = map[pricing.Field]string{
	pricing.FieldProductID: "product_id",
	pricing.FieldBrandID:   "brand_id",
}

var sortColumns = map[pricing.SortField]string{
	pricing.SortPriority: "priority",
	pricing.SortID:       "price_list",
}

// statement is a rendered SQL query with its positional arguments.
type statement struct {
	SQL  string
	Args []any
}

// builder renders a pricing.Query against the prices table for one dialect.
type builder struct {
	dialect dialect
	args    []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

// selectPrices builds SELECT ... FROM prices WHERE ... ORDER BY ... LIMIT ...
func (d dialect) selectPrices(q pricing.Query) (statement, error) {
	b := &builder{dialect: d}

	var sql strings.Builder
	sql.WriteString("SELECT ")
	sql.WriteString(strings.Join(priceColumns, ", "))
	sql.WriteString(" FROM prices")

	if q.Filter != nil {
		where, err := b.condition(q.Filter)
		if err != nil {
			return statement{}, err
		}
		if where != "" {
			sql.WriteString(" WHERE ")
			sql.WriteString(where)
		}
	}

	if len(q.OrderBy) > 0 {
		keys := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			col, ok := sortColumns[o.Field]
			if !ok {
				return statement{}, fmt.Errorf("unsupported sort field %q", o.Field)
			}
			if o.Direction == pricing.Desc {
				keys = append(keys, col+" DESC")
			} else {
				keys = append(keys, col+" ASC")
			}
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(keys, ", "))
	}

	if q.Limit > 0 {
		sql.WriteString(" LIMIT ")
		sql.WriteString(b.bind(q.Limit))
	}

	return statement{SQL: sql.String(), Args: b.args}, nil
}

// condition renders a predicate as a SQL boolean expression. An empty result means
// no filtering.
func (b *builder) condition(p pricing.Predicate) (string, error) {
	switch p := p.(type) {
	case pricing.True:
		return "", nil
	case pricing.Equals:
		col, ok := filterColumns[p.Field]
		if !ok {
			return "", fmt.Errorf("unsupported filter field %q", p.Field)
		}
		return col + " = " + b.bind(p.Value), nil
	case pricing.Contains:
		return b.bind(b.dialect.timeArg(p.At)) + " BETWEEN start_date AND end_date", nil
	case pricing.Conjunction:
		parts := make([]string, 0, len(p))
		for _, term := range p {
			part, err := b.condition(term)
			if err != nil {
				return "", err
			}
			if part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, " AND "), nil
	default:
		return "", fmt.Errorf("unsupported predicate %T", p)
	}
}
