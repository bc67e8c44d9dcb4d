package recommendations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/slicehouse/catalog-service/models"
	"github.com/slicehouse/catalog-service/models/modelstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend(t *testing.T) {
	ctx := context.Background()
	store := modelstest.Store(t)
	require.NoError(t, store.Ledger.RecordEdges(ctx, []models.CoPurchaseEdge{
		{SKU: "A", RelatedSKU: "B"},
		{SKU: "B", RelatedSKU: "A"},
		{SKU: "A", RelatedSKU: "C"},
		{SKU: "A", RelatedSKU: "B"},
	}))
	reader := NewReader(store.Ledger)

	related, err := reader.Recommend(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "B"}, related)

	related, err = reader.Recommend(ctx, "NEVER-SOLD")
	require.NoError(t, err)
	assert.NotNil(t, related)
	assert.Empty(t, related)

	_, err = reader.Recommend(ctx, "  ")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}

func TestRecommendConcurrentCallersGetOwnCopies(t *testing.T) {
	ctx := context.Background()
	store := modelstest.Store(t)
	require.NoError(t, store.Ledger.RecordEdges(ctx, []models.CoPurchaseEdge{
		{SKU: "A", RelatedSKU: "B"},
		{SKU: "A", RelatedSKU: "C"},
	}))
	reader := NewReader(store.Ledger)

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			related, err := reader.Recommend(ctx, "A")
			assert.NoError(t, err)
			results[i] = related
		}()
	}
	wg.Wait()

	for _, related := range results {
		assert.Equal(t, []string{"B", "C"}, related)
	}
	results[0][0] = "MUTATED"
	assert.Equal(t, "B", results[1][0])
}

func TestRecommendCancelledCallerDoesNotFailOthers(t *testing.T) {
	ctx := context.Background()
	db := modelstest.DB(t)
	store := models.NewStore(db)
	require.NoError(t, store.Ledger.RecordEdges(ctx, []models.CoPurchaseEdge{
		{SKU: "A", RelatedSKU: "B"},
	}))
	reader := NewReader(store.Ledger)

	// Hold the only connection so both reads queue behind it.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	conn, err := sqlDB.Conn(ctx)
	require.NoError(t, err)

	cancelledCtx, cancel := context.WithCancel(ctx)
	cancelledDone := make(chan error, 1)
	go func() {
		_, err := reader.Recommend(cancelledCtx, "A")
		cancelledDone <- err
	}()

	type result struct {
		related []string
		err     error
	}
	liveDone := make(chan result, 1)
	go func() {
		related, err := reader.Recommend(ctx, "A")
		liveDone <- result{related, err}
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-cancelledDone, context.Canceled)
	require.NoError(t, conn.Close())

	live := <-liveDone
	require.NoError(t, live.err)
	assert.Equal(t, []string{"B"}, live.related)
}

func TestRecommendSeesCommittedSales(t *testing.T) {
	ctx := context.Background()
	store := modelstest.Store(t)
	reader := NewReader(store.Ledger)

	related, err := reader.Recommend(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, related)

	require.NoError(t, store.Ledger.RecordEdges(ctx, []models.CoPurchaseEdge{
		{SKU: "A", RelatedSKU: "B"},
		{SKU: "B", RelatedSKU: "A"},
	}))

	related, err = reader.Recommend(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, related)
}

func TestTally(t *testing.T) {
	testCases := []struct {
		name     string
		skus     []string
		expected []Recommendation
	}{
		{
			name:     "empty",
			skus:     nil,
			expected: []Recommendation{},
		},
		{
			name:     "counts highest first",
			skus:     []string{"C", "B", "B", "D", "B", "D"},
			expected: []Recommendation{{"B", 3}, {"D", 2}, {"C", 1}},
		},
		{
			name:     "ties keep first appearance",
			skus:     []string{"Z", "A", "A", "Z", "M"},
			expected: []Recommendation{{"Z", 2}, {"A", 2}, {"M", 1}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tally(tc.skus))
		})
	}
}
