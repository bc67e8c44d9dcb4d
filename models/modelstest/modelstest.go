// Package modelstest provides an isolated in-memory catalog database per test.
package modelstest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/slicehouse/catalog-service/config"
	"github.com/slicehouse/catalog-service/models"
	"gorm.io/gorm"
)

// DB opens a fresh, migrated in-memory sqlite database that is closed when
// the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	db, err := models.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		LogLevel: "silent",
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Store is DB wrapped in a models.Store.
func Store(tb testing.TB) *models.Store {
	tb.Helper()
	return models.NewStore(DB(tb))
}

// SeedProduct inserts a product with the given stock and price.
func SeedProduct(tb testing.TB, store *models.Store, sku, title string, price float64, stock int) *models.Product {
	tb.Helper()
	p := &models.Product{
		SKU:         sku,
		Title:       title,
		Price:       decimal.NewFromFloat(price),
		Stock:       stock,
		LastUpdated: time.Now().UTC(),
	}
	if err := store.Products.CreateProduct(context.Background(), p); err != nil {
		tb.Fatalf("seed product %s: %v", sku, err)
	}
	return p
}

// Stock re-reads the stock of sku.
func Stock(tb testing.TB, store *models.Store, sku string) int {
	tb.Helper()
	p, err := store.Products.FindBySku(context.Background(), sku)
	if err != nil {
		tb.Fatalf("read stock of %s: %v", sku, err)
	}
	return p.Stock
}
