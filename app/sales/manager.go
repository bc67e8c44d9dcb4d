package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/slicehouse/catalog-service/logger"
	"github.com/slicehouse/catalog-service/models"
)

// Manager applies sale events: stock decrements plus co-purchase edges, all
// or nothing.
type Manager struct {
	store *models.Store
	log   *logger.Logger
}

func NewManager(store *models.Store, log *logger.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With("component", "sales.Manager"),
	}
}

// Sell sells one unit per occurrence of each SKU. A SKU listed twice sells
// two units, yet the sale records a single edge per ordered pair of distinct
// SKUs.
func (m *Manager) Sell(ctx context.Context, skus []string) error {
	if len(skus) == 0 {
		return fmt.Errorf("%w: no skus to sell", models.ErrInvalidArgument)
	}
	var distinct []string
	seen := make(map[string]bool, len(skus))
	for _, sku := range skus {
		if strings.TrimSpace(sku) == "" {
			return fmt.Errorf("%w: blank sku", models.ErrInvalidArgument)
		}
		if !seen[sku] {
			seen[sku] = true
			distinct = append(distinct, sku)
		}
	}

	err := m.store.Transaction(ctx, func(tx *models.Store) error {
		// Unknown SKUs are reported in request order.
		for _, sku := range distinct {
			if _, err := tx.Products.FindBySku(ctx, sku); err != nil {
				return &models.SkuError{SKU: sku, Err: err}
			}
		}

		// Rows are locked in a fixed order so concurrent sales cannot deadlock.
		lockOrder := append([]string(nil), distinct...)
		sort.Strings(lockOrder)
		stock := make(map[string]int, len(lockOrder))
		for _, sku := range lockOrder {
			p, err := tx.Products.LockBySku(ctx, sku)
			if err != nil {
				return &models.SkuError{SKU: sku, Err: err}
			}
			stock[sku] = p.Stock
		}

		for _, sku := range skus {
			if stock[sku] <= 0 {
				return &models.SkuError{SKU: sku, Err: models.ErrOutOfStock}
			}
			stock[sku]--
		}
		for _, sku := range distinct {
			if err := tx.Products.UpdateStock(ctx, sku, stock[sku]); err != nil {
				return err
			}
		}

		return tx.Ledger.RecordEdges(ctx, pairEdges(distinct))
	})
	if err != nil {
		m.log.Warn("sale rolled back", "skus", skus, "error", err)
		return err
	}
	m.log.Info("sale committed", "skus", skus)
	return nil
}

func pairEdges(skus []string) []models.CoPurchaseEdge {
	edges := make([]models.CoPurchaseEdge, 0, len(skus)*(len(skus)-1))
	for _, a := range skus {
		for _, b := range skus {
			if a != b {
				edges = append(edges, models.CoPurchaseEdge{SKU: a, RelatedSKU: b})
			}
		}
	}
	return edges
}
