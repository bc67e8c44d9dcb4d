package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) RecordEdge(ctx context.Context, skuA, skuB string) error {
	return r.RecordEdges(ctx, []CoPurchaseEdge{{SKU: skuA, RelatedSKU: skuB}})
}

// RecordEdges appends edges in slice order. A zero CreatedAt is stamped with
// the current time.
func (r *LedgerRepository) RecordEdges(ctx context.Context, edges []CoPurchaseEdge) error {
	if len(edges) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range edges {
		if edges[i].CreatedAt.IsZero() {
			edges[i].CreatedAt = now
		}
	}
	if err := r.db.WithContext(ctx).Create(&edges).Error; err != nil {
		return storageErr("record co-purchase edges", err)
	}
	return nil
}

// RelatedSkus returns every SKU bought together with sku, in insertion order.
// Duplicates are kept on purpose.
func (r *LedgerRepository) RelatedSkus(ctx context.Context, sku string) ([]string, error) {
	related := []string{}
	if err := r.db.WithContext(ctx).
		Model(&CoPurchaseEdge{}).
		Where("sku = ?", sku).
		Order("id ASC").
		Pluck("related_sku", &related).Error; err != nil {
		return nil, storageErr("related skus", err)
	}
	if related == nil {
		related = []string{}
	}
	return related, nil
}
