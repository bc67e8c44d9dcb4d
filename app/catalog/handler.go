package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/slicehouse/catalog-service/app/api"
	"github.com/slicehouse/catalog-service/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Product struct {
	SKU         string    `json:"sku"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	ImageLink   string    `json:"image_link"`
	PizzaType   string    `json:"pizza_type"`
	Price       float64   `json:"price"`
	SalePrice   float64   `json:"sale_price"`
	Explanation string    `json:"explanation"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	Diet        string    `json:"diet"`
	LastUpdated time.Time `json:"last_updated"`
}

type ProductProvider interface {
	ListProducts(ctx context.Context, filters models.ProductFilters, sortBy string, order models.SortOrder) ([]models.Product, error)
	FindBySku(ctx context.Context, sku string) (*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
}

func NewCatalogHandler(r ProductProvider) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Parse sorting
	sortBy := query.Get("sortBy")
	if sortBy == "" {
		sortBy = "price"
	}
	if !models.IsProductColumn(sortBy) {
		api.ErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid sortBy field. Must be one of: %s", strings.Join(models.ProductColumns, ", ")))
		return
	}
	order := models.SortAsc
	if o := query.Get("order"); o != "" {
		order = models.SortOrder(strings.ToUpper(o))
	}
	if !order.Valid() {
		api.ErrorResponse(w, http.StatusBadRequest, `Invalid order value. Must be either "ASC" or "DESC"`)
		return
	}

	filters, err := parseFilters(query.Get)
	if err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.repo.ListProducts(r.Context(), filters, sortBy, order)
	if err != nil {
		if errors.Is(err, models.ErrInvalidArgument) {
			api.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(&res[i])
	}
	api.OKResponse(w, http.StatusOK, Response{
		Total:    len(products),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")

	product, err := h.repo.FindBySku(r.Context(), sku)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Product not found")
			return
		}
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	api.OKResponse(w, http.StatusOK, toProduct(product))
}

func parseFilters(get func(string) string) (models.ProductFilters, error) {
	filters := models.ProductFilters{
		SKU:   strings.TrimSpace(get("sku")),
		Title: strings.TrimSpace(get("title")),
	}
	if s := get("price"); s != "" {
		price, err := decimal.NewFromString(s)
		if err != nil {
			return filters, fmt.Errorf("invalid price filter %q", s)
		}
		filters.Price = &price
	}
	if s := get("stock"); s != "" {
		stock, err := strconv.Atoi(s)
		if err != nil {
			return filters, fmt.Errorf("invalid stock filter %q", s)
		}
		filters.Stock = &stock
	}
	return filters, nil
}

func toProduct(p *models.Product) Product {
	return Product{
		SKU:         p.SKU,
		Title:       p.Title,
		Link:        p.Link,
		ImageLink:   p.ImageLink,
		PizzaType:   p.PizzaTypeName(),
		Price:       p.Price.InexactFloat64(),
		SalePrice:   p.SalePrice.InexactFloat64(),
		Explanation: p.Explanation,
		Rating:      p.Rating,
		RatingCount: p.RatingCount,
		Stock:       p.Stock,
		Category:    p.CategoryName(),
		Diet:        p.DietName(),
		LastUpdated: p.LastUpdated,
	}
}
