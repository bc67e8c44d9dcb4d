package recommendations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/slicehouse/catalog-service/models"
)

// Recommendation is a related SKU with the number of sales it shared.
type Recommendation struct {
	SKU   string `json:"sku"`
	Count int    `json:"count"`
}

type Reader struct {
	ledger *models.LedgerRepository
}

func NewReader(ledger *models.LedgerRepository) *Reader {
	return &Reader{ledger: ledger}
}

// Recommend returns every SKU co-purchased with sku, once per recorded edge,
// oldest first. Unknown SKUs yield an empty list. Each call reads the ledger
// under its own context.
func (r *Reader) Recommend(ctx context.Context, sku string) ([]string, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, fmt.Errorf("%w: blank sku", models.ErrInvalidArgument)
	}

	return r.ledger.RelatedSkus(ctx, sku)
}

// Tally collapses a Recommend result into counts, highest first. Ties keep
// the order in which the SKU first appeared.
func Tally(skus []string) []Recommendation {
	ranked := []Recommendation{}
	index := make(map[string]int, len(skus))
	for _, sku := range skus {
		if i, ok := index[sku]; ok {
			ranked[i].Count++
			continue
		}
		index[sku] = len(ranked)
		ranked = append(ranked, Recommendation{SKU: sku, Count: 1})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}
