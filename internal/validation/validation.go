package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"price-resolution-api/internal/models"
)

var idRegex = regexp.MustCompile(`^\d{1,18}$`)

// Query parameter names of a price lookup.
const (
	ParamProductID = "productId"
	ParamBrandID   = "brandId"
	ParamPriceDate = "priceDate"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ParseLookup validates raw lookup parameters and builds the request. Dates
// without a zone are taken as UTC; RFC3339 dates are converted to UTC.
func ParseLookup(productID, brandID, priceDate string) (models.LookupRequest, error) {
	product, err := ValidateID(productID, ParamProductID)
	if err != nil {
		return models.LookupRequest{}, err
	}

	brand, err := ValidateID(brandID, ParamBrandID)
	if err != nil {
		return models.LookupRequest{}, err
	}

	at, err := ValidateDateTime(priceDate, ParamPriceDate)
	if err != nil {
		return models.LookupRequest{}, err
	}

	return models.LookupRequest{
		ProductID: product,
		BrandID:   brand,
		At:        at,
	}, nil
}

func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

// ValidateID parses a required positive integer identifier.
func ValidateID(raw, fieldName string) (int64, error) {
	raw = SanitizeString(raw)
	if raw == "" {
		return 0, &ValidationError{
			Field:   fieldName,
			Message: "is required",
		}
	}

	if !idRegex.MatchString(raw) {
		return 0, &ValidationError{
			Field:   fieldName,
			Message: "must be a positive integer",
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{
			Field:   fieldName,
			Message: "must be a positive integer",
		}
	}

	return id, nil
}

// ValidateDateTime parses a required instant in the wire layout or RFC3339.
func ValidateDateTime(raw, fieldName string) (time.Time, error) {
	raw = SanitizeString(raw)
	if raw == "" {
		return time.Time{}, &ValidationError{
			Field:   fieldName,
			Message: "is required",
		}
	}

	if t, err := time.ParseInLocation(models.DateTimeLayout, raw, time.UTC); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("must be formatted as %s or RFC3339", models.DateTimeLayout),
		}
	}

	return t.UTC(), nil
}
