package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"price-resolution-api/internal/models"
)

func TestLookupQuery_String(t *testing.T) {
	q := LookupQuery(lookup("2020-06-14T10:00:00"))

	assert.Equal(t,
		"WHERE brand_id = 1 AND product_id = 35455 AND start_date <= 2020-06-14T10:00:00Z <= end_date ORDER BY priority DESC, id ASC LIMIT 1",
		q.String())
}

func TestLookupQuery_AbsentFieldsPassThrough(t *testing.T) {
	q := LookupQuery(models.LookupRequest{BrandID: 1})

	assert.Equal(t, BrandEquals(1), q.Filter)
	assert.Len(t, q.Apply(sampleWindows()), 1)
}

func TestQuery_ApplyDoesNotModifyInput(t *testing.T) {
	in := sampleWindows()
	q := Query{Filter: True{}, OrderBy: []Order{{SortPriority, Desc}, {SortID, Desc}}}

	out := q.Apply(in)

	assert.Equal(t, []int64{4, 3, 2, 1}, ids(out))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(in))
}

func TestQuery_ApplyNilFilterAndNoLimit(t *testing.T) {
	out := Query{}.Apply(sampleWindows())

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(out))
	assert.Equal(t, "WHERE TRUE", Query{}.String())
}

func ids(ws []models.PriceWindow) []int64 {
	out := make([]int64, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}
