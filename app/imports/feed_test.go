package imports

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeSKU(t *testing.T) {
	assert.Equal(t, "VEGGIE-PIZZA", SynthesizeSKU("Veggie Pizza"))
	assert.Equal(t, "QUATTRO-FORMAGGI", SynthesizeSKU("  quattro \t formaggi "))
	assert.Equal(t, "", SynthesizeSKU("   "))
}

func TestStockFromIndicator(t *testing.T) {
	assert.Equal(t, 1, StockFromIndicator("In Stock"))
	assert.Equal(t, 1, StockFromIndicator(" in stock "))
	assert.Equal(t, 0, StockFromIndicator("Out of Stock"))
	assert.Equal(t, 0, StockFromIndicator(""))
}

func TestFeedReader(t *testing.T) {
	feed := "\ufeffTitle,SKU,Price,Stock,Pizza Type\n" +
		"Veggie Pizza,,9.90,In Stock,Thin\n" +
		"Margherita,MARG-1,8,Out of Stock,Neapolitan\n" +
		"Broken,row\n" +
		"Calzone,CALZ,11,In Stock,Folded\n"

	reader, err := NewFeedReader(strings.NewReader(feed))
	require.NoError(t, err)

	row, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, "Veggie Pizza", row.Title)
	assert.Equal(t, "", row.SKU)
	assert.Equal(t, "Thin", row.PizzaType)

	row, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "MARG-1", row.SKU)
	assert.Nil(t, row.Err)

	row, err = reader.Next()
	require.NoError(t, err, "a short record is a row problem, not a feed problem")
	assert.Equal(t, 4, row.Line)
	assert.Error(t, row.Err)

	row, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "CALZ", row.SKU)

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFeedReaderLinesSpanQuotedNewlines(t *testing.T) {
	feed := "title,sku,explanation\n" +
		"Veggie Pizza,VEG,\"peppers\non\nthree lines\"\n" +
		"Broken\n" +
		"Calzone,CALZ,folded\n"

	reader, err := NewFeedReader(strings.NewReader(feed))
	require.NoError(t, err)

	row, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, "peppers\non\nthree lines", row.Explanation)

	row, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, 5, row.Line)
	assert.Error(t, row.Err)

	row, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, 6, row.Line)
	assert.Equal(t, "CALZ", row.SKU)
}

func TestFeedReaderStructuralErrors(t *testing.T) {
	testCases := []struct {
		name string
		feed string
	}{
		{"empty feed", ""},
		{"no identifying column", "price,stock\n1,In Stock\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFeedReader(strings.NewReader(tc.feed))
			assert.ErrorIs(t, err, ErrMalformedFeed)
		})
	}
}

func TestFeedReaderBadQuotingIsFatal(t *testing.T) {
	reader, err := NewFeedReader(strings.NewReader("title,sku\n\"unterminated,X\n"))
	require.NoError(t, err)

	_, err = reader.Next()
	assert.ErrorIs(t, err, ErrMalformedFeed)
}

func TestFeedRowProduct(t *testing.T) {
	row := FeedRow{
		Title:       "Veggie Pizza",
		Price:       "$9.90",
		SalePrice:   "7.5",
		Rating:      "4.6",
		RatingCount: "1,204",
		Stock:       "In Stock",
	}

	p, err := row.Product("VEGGIE-PIZZA")

	require.NoError(t, err)
	assert.Equal(t, "VEGGIE-PIZZA", p.SKU)
	assert.True(t, decimal.RequireFromString("9.90").Equal(p.Price))
	assert.True(t, decimal.RequireFromString("7.5").Equal(p.SalePrice))
	assert.Equal(t, 4.6, p.Rating)
	assert.Equal(t, 1204, p.RatingCount)
	assert.Equal(t, 1, p.Stock)
}

func TestFeedRowProductRejectsBadNumbers(t *testing.T) {
	testCases := []struct {
		name string
		row  FeedRow
	}{
		{"price", FeedRow{Price: "cheap"}},
		{"negative price", FeedRow{Price: "-1"}},
		{"sale price", FeedRow{SalePrice: "n/a"}},
		{"rating", FeedRow{Rating: "five"}},
		{"rating count", FeedRow{RatingCount: "many"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.row.Product("X")
			assert.Error(t, err)
			assert.False(t, errors.Is(err, ErrMalformedFeed))
		})
	}
}
