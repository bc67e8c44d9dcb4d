package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ProductFilters are AND-composed. Nil/empty fields are ignored.
type ProductFilters struct {
	Price *decimal.Decimal
	SKU   string
	Stock *int
	Title string
}

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// ProductColumns lists the product columns a listing can be sorted by.
var ProductColumns = []string{
	"id",
	"title",
	"link",
	"image_link",
	"pizza_type",
	"price",
	"sale_price",
	"explanation",
	"rating",
	"rating_count",
	"stock",
	"sku",
	"category",
	"diet",
	"last_updated",
}

var productSortExpr = map[string]string{
	"id":           "products.id",
	"title":        "products.title",
	"link":         "products.link",
	"image_link":   "products.image_link",
	"pizza_type":   "pizza_types.name",
	"price":        "products.price",
	"sale_price":   "products.sale_price",
	"explanation":  "products.explanation",
	"rating":       "products.rating",
	"rating_count": "products.rating_count",
	"stock":        "products.stock",
	"sku":          "products.sku",
	"category":     "categories.name",
	"diet":         "diets.name",
	"last_updated": "products.last_updated",
}

func IsProductColumn(name string) bool {
	_, ok := productSortExpr[name]
	return ok
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// FindOrCreateLookup returns the id of name in table, inserting it first when
// absent. Concurrent first references are settled by the unique index on name:
// the losing insert is a no-op and the follow-up read sees the winner's row.
func (r *ProductsRepository) FindOrCreateLookup(ctx context.Context, table LookupTable, name string) (uint, error) {
	if !table.Valid() {
		return 0, invalidArg("unknown lookup table %q", table)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, invalidArg("empty %s name", table)
	}

	db := r.db.WithContext(ctx)
	for attempt := 0; attempt < 2; attempt++ {
		var rows []Lookup
		if err := db.Table(string(table)).
			Where("name = ?", name).
			Limit(1).
			Find(&rows).Error; err != nil {
			return 0, storageErr("find "+string(table), err)
		}
		if len(rows) == 1 {
			return rows[0].ID, nil
		}

		row := Lookup{Name: name}
		if err := db.Table(string(table)).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoNothing: true,
			}).
			Create(&row).Error; err != nil {
			return 0, storageErr("insert "+string(table), err)
		}
	}
	return 0, storageErr("find or create "+string(table), fmt.Errorf("%q not visible after insert", name))
}

func (r *ProductsRepository) ListLookups(ctx context.Context, table LookupTable) ([]Lookup, error) {
	if !table.Valid() {
		return nil, invalidArg("unknown lookup table %q", table)
	}
	rows := []Lookup{}
	if err := r.db.WithContext(ctx).
		Table(string(table)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, storageErr("list "+string(table), err)
	}
	return rows, nil
}

// CreateProduct inserts a new product. It never overwrites: an existing SKU
// yields ErrDuplicateSku and resolution is left to the caller.
func (r *ProductsRepository) CreateProduct(ctx context.Context, p *Product) error {
	if strings.TrimSpace(p.SKU) == "" {
		return invalidArg("product sku is required")
	}
	if p.Stock < 0 {
		return invalidArg("negative stock %d for sku %q", p.Stock, p.SKU)
	}
	if p.LastUpdated.IsZero() {
		p.LastUpdated = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return &SkuError{SKU: p.SKU, Err: ErrDuplicateSku}
		}
		return storageErr("insert product", err)
	}
	return nil
}

// FindBySku returns the product with its lookups. Inside a transaction it
// sees that transaction's own uncommitted writes.
func (r *ProductsRepository) FindBySku(ctx context.Context, sku string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Diet").
		Preload("PizzaType").
		Where("sku = ?", sku).
		Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("find product", err)
	}
	return &product, nil
}

// LockBySku reads the product row with SELECT ... FOR UPDATE so concurrent
// sales of the same SKU queue behind each other. Only meaningful inside a
// transaction; sqlite ignores the locking clause and serialises writers itself.
func (r *ProductsRepository) LockBySku(ctx context.Context, sku string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sku = ?", sku).
		Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("lock product", err)
	}
	return &product, nil
}

func (r *ProductsRepository) UpdateStock(ctx context.Context, sku string, newStock int) error {
	if newStock < 0 {
		return invalidArg("negative stock %d for sku %q", newStock, sku)
	}
	res := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("sku = ?", sku).
		Updates(map[string]interface{}{
			"stock":        newStock,
			"last_updated": time.Now().UTC(),
		})
	if res.Error != nil {
		return storageErr("update stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return &SkuError{SKU: sku, Err: ErrProductNotFound}
	}
	return nil
}

func (r *ProductsRepository) ListProducts(ctx context.Context, filters ProductFilters, sortBy string, order SortOrder) ([]Product, error) {
	sortExpr, ok := productSortExpr[sortBy]
	if !ok {
		return nil, invalidArg("unknown sort column %q", sortBy)
	}
	if !order.Valid() {
		return nil, invalidArg("unknown sort order %q", order)
	}

	query := r.db.WithContext(ctx).
		Model(&Product{}).
		Select("products.*").
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN diets ON diets.id = products.diet_id").
		Joins("LEFT JOIN pizza_types ON pizza_types.id = products.pizza_type_id").
		Preload("Category").
		Preload("Diet").
		Preload("PizzaType")

	// Filter
	if filters.Price != nil {
		query = query.Where("products.price = ?", *filters.Price)
	}
	if filters.SKU != "" {
		query = query.Where("products.sku = ?", filters.SKU)
	}
	if filters.Stock != nil {
		query = query.Where("products.stock = ?", *filters.Stock)
	}
	if filters.Title != "" {
		query = query.Where(`LOWER(products.title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(filters.Title))+"%")
	}

	products := []Product{}
	if err := query.
		Order(sortExpr + " " + string(order)).
		Order("products.id ASC").
		Find(&products).Error; err != nil {
		return nil, storageErr("list products", err)
	}
	return products, nil
}

// isUniqueViolation relies on gorm's TranslateError and falls back to the
// driver messages for dialect versions that do not translate.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
