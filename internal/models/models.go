package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateTimeLayout is the wire format for dates in requests and responses.
const DateTimeLayout = "2006-01-02T15:04:05"

// PriceWindow is a time-bounded, priority-ranked price for a (product, brand) pair.
type PriceWindow struct {
	ID        int64           `json:"id"`         // price list
	ProductID int64           `json:"product_id"` // positive
	BrandID   int64           `json:"brand_id"`   // positive
	StartDate time.Time       `json:"start_date"` // inclusive
	EndDate   time.Time       `json:"end_date"`   // inclusive
	Priority  int             `json:"priority"`   // higher wins
	Currency  string          `json:"currency"`   // ISO 4217, e.g. "EUR"
	Value     decimal.Decimal `json:"value"`
}

// LookupRequest identifies the price to resolve. Zero fields are treated as absent.
type LookupRequest struct {
	ProductID int64
	BrandID   int64
	At        time.Time
}

// Brand is a seller brand that owns price windows.
type Brand struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog product that price windows apply to.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PriceResponse is the response payload for a resolved price.
type PriceResponse struct {
	PriceList int64       `json:"priceList"`
	ProductID int64       `json:"productId"`
	BrandID   int64       `json:"brandId"`
	StartDate string      `json:"startDate"`
	EndDate   string      `json:"endDate"`
	Value     json.Number `json:"value"`
}

// NewPriceResponse maps a resolved window to its wire representation.
func NewPriceResponse(w PriceWindow) PriceResponse {
	return PriceResponse{
		PriceList: w.ID,
		ProductID: w.ProductID,
		BrandID:   w.BrandID,
		StartDate: w.StartDate.UTC().Format(DateTimeLayout),
		EndDate:   w.EndDate.UTC().Format(DateTimeLayout),
		Value:     json.Number(w.Value.StringFixed(2)),
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Date    string `json:"date"`
}
