package database

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"price-resolution-api/internal/models"
)

// SampleBrand and SampleProduct identify the sample data set.
var (
	SampleBrand   = models.Brand{ID: 1, Name: "ZARA"}
	SampleProduct = models.Product{ID: 35455, Name: "Sample product"}
)

// SamplePriceWindows returns the reference price list for SampleProduct and SampleBrand.
func SamplePriceWindows() []models.PriceWindow {
	at := func(year int, month time.Month, day, hour, min, sec int) time.Time {
		return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	}

	return []models.PriceWindow{
		{
			ID: 1, ProductID: SampleProduct.ID, BrandID: SampleBrand.ID,
			StartDate: at(2020, 6, 14, 0, 0, 0), EndDate: at(2020, 12, 31, 23, 59, 59),
			Priority: 0, Currency: "EUR", Value: decimal.RequireFromString("35.50"),
		},
		{
			ID: 2, ProductID: SampleProduct.ID, BrandID: SampleBrand.ID,
			StartDate: at(2020, 6, 14, 15, 0, 0), EndDate: at(2020, 6, 14, 18, 30, 0),
			Priority: 1, Currency: "EUR", Value: decimal.RequireFromString("25.45"),
		},
		{
			ID: 3, ProductID: SampleProduct.ID, BrandID: SampleBrand.ID,
			StartDate: at(2020, 6, 15, 0, 0, 0), EndDate: at(2020, 6, 15, 11, 0, 0),
			Priority: 1, Currency: "EUR", Value: decimal.RequireFromString("30.50"),
		},
		{
			ID: 4, ProductID: SampleProduct.ID, BrandID: SampleBrand.ID,
			StartDate: at(2020, 6, 15, 16, 0, 0), EndDate: at(2020, 12, 31, 23, 59, 59),
			Priority: 1, Currency: "EUR", Value: decimal.RequireFromString("38.95"),
		},
	}
}

// SeedSamplePrices loads the sample brand, product and price windows. It is idempotent.
func (db *DB) SeedSamplePrices(ctx context.Context) (int, error) {
	if err := db.UpsertBrand(ctx, SampleBrand); err != nil {
		return 0, err
	}
	if err := db.UpsertProduct(ctx, SampleProduct); err != nil {
		return 0, err
	}

	n, err := db.UpsertPriceWindows(ctx, SamplePriceWindows())
	if err != nil {
		return 0, fmt.Errorf("failed to seed sample prices: %w", err)
	}
	return n, nil
}
