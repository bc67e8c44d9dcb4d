package imports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/slicehouse/catalog-service/models"
)

// ErrMalformedFeed marks a feed that cannot be read as a whole. It aborts the
// batch, unlike problems confined to a single row.
var ErrMalformedFeed = errors.New("malformed product feed")

// FeedRow is one product record of the feed, addressed by header name.
type FeedRow struct {
	// Line is the physical line the record starts on; the header is line 1.
	Line        int
	Title       string
	Link        string
	ImageLink   string
	PizzaType   string
	Price       string
	SalePrice   string
	Explanation string
	Rating      string
	RatingCount string
	Stock       string
	SKU         string
	Category    string
	Diet        string

	// Err is set when the record itself is unusable (wrong field count).
	Err error
}

// FeedReader streams FeedRows out of a CSV document with a header line.
type FeedReader struct {
	r       *csv.Reader
	columns map[string]int
}

func NewFeedReader(src io.Reader) (*FeedReader, error) {
	r := csv.NewReader(src)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedFeed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[normalizeHeader(name)] = i
	}
	_, hasTitle := columns["title"]
	_, hasSku := columns["sku"]
	if !hasTitle && !hasSku {
		return nil, fmt.Errorf("%w: header needs a title or sku column", ErrMalformedFeed)
	}

	return &FeedReader{r: r, columns: columns}, nil
}

// Next returns the next row or io.EOF. Records with the wrong number of
// fields come back with FeedRow.Err set and a nil error so the caller can
// report them and keep going; any other read error is fatal.
func (f *FeedReader) Next() (FeedRow, error) {
	record, err := f.r.Read()
	if err == io.EOF {
		return FeedRow{}, io.EOF
	}
	if err != nil && !errors.Is(err, csv.ErrFieldCount) {
		// ParseError already names the offending line.
		return FeedRow{}, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}

	line, _ := f.r.FieldPos(0)
	row := FeedRow{Line: line, Err: err}
	f.fill(&row, record)
	return row, nil
}

func (f *FeedReader) fill(row *FeedRow, record []string) {
	get := func(name string) string {
		i, ok := f.columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	row.Title = get("title")
	row.Link = get("link")
	row.ImageLink = get("image_link")
	row.PizzaType = get("pizza_type")
	row.Price = get("price")
	row.SalePrice = get("sale_price")
	row.Explanation = get("explanation")
	row.Rating = get("rating")
	row.RatingCount = get("rating_count")
	row.Stock = get("stock")
	row.SKU = get("sku")
	row.Category = get("category")
	row.Diet = get("diet")
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "_")
}

// SynthesizeSKU derives a SKU from a title: upper-cased with whitespace runs
// replaced by "-". Rows with identical titles collide.
func SynthesizeSKU(title string) string {
	return strings.ToUpper(strings.Join(strings.Fields(title), "-"))
}

// StockFromIndicator maps the feed's textual availability to a unit count.
func StockFromIndicator(indicator string) int {
	if strings.EqualFold(strings.TrimSpace(indicator), "In Stock") {
		return 1
	}
	return 0
}

// Product converts the row into a product with the given SKU. Lookup ids are
// left for the caller to resolve.
func (row FeedRow) Product(sku string) (*models.Product, error) {
	price, err := parseDecimal("price", row.Price)
	if err != nil {
		return nil, err
	}
	salePrice, err := parseDecimal("sale_price", row.SalePrice)
	if err != nil {
		return nil, err
	}
	var rating float64
	if row.Rating != "" {
		rating, err = strconv.ParseFloat(row.Rating, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rating %q", row.Rating)
		}
	}
	var ratingCount int
	if row.RatingCount != "" {
		ratingCount, err = strconv.Atoi(strings.ReplaceAll(row.RatingCount, ",", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid rating_count %q", row.RatingCount)
		}
	}

	return &models.Product{
		SKU:         sku,
		Title:       row.Title,
		Link:        row.Link,
		ImageLink:   row.ImageLink,
		Price:       price,
		SalePrice:   salePrice,
		Explanation: row.Explanation,
		Rating:      rating,
		RatingCount: ratingCount,
		Stock:       StockFromIndicator(row.Stock),
	}, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "$")
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, value)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative %s %q", field, value)
	}
	return d, nil
}
