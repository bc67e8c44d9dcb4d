package app

import (
	"net/http"

	"github.com/slicehouse/catalog-service/app/catalog"
	"github.com/slicehouse/catalog-service/app/categories"
	"github.com/slicehouse/catalog-service/app/imports"
	"github.com/slicehouse/catalog-service/app/middleware"
	"github.com/slicehouse/catalog-service/app/recommendations"
	"github.com/slicehouse/catalog-service/app/sales"
	"github.com/slicehouse/catalog-service/config"
	"github.com/slicehouse/catalog-service/logger"
	"github.com/slicehouse/catalog-service/models"
)

// NewRouter wires every handler over store. All product routes need a bearer
// token; importing additionally needs the admin role.
func NewRouter(cfg *config.Config, store *models.Store, log *logger.Logger) http.Handler {
	catalogHandler := catalog.NewCatalogHandler(store.Products)
	categoryHandler := categories.NewCategoryHandler(store.Products, models.LookupCategories)
	dietHandler := categories.NewCategoryHandler(store.Products, models.LookupDiets)
	pizzaTypeHandler := categories.NewCategoryHandler(store.Products, models.LookupPizzaTypes)
	importHandler := imports.NewImportHandler(
		imports.NewPipeline(store, cfg.Import.Workers, log),
		cfg.Import.MaxUploadBytes,
		log,
	)
	sellHandler := sales.NewSellHandler(sales.NewManager(store, log))
	recommendHandler := recommendations.NewRecommendHandler(recommendations.NewReader(store.Ledger))

	authed := middleware.Authenticate([]byte(cfg.Auth.JWTSecret))
	admin := middleware.RequireRole(middleware.RoleAdmin)
	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, authed)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /products", protect(catalogHandler.HandleGet))
	mux.Handle("GET /products/{sku}", protect(catalogHandler.HandleGetProduct))
	mux.Handle("POST /products/import", middleware.Chain(http.HandlerFunc(importHandler.HandleImport), authed, admin))
	mux.Handle("POST /products/sell", protect(sellHandler.HandleSell))
	mux.Handle("GET /products/recommend/{sku}", protect(recommendHandler.HandleRecommend))

	mux.Handle("GET /categories", protect(categoryHandler.HandleGetAll))
	mux.Handle("POST /categories", protect(categoryHandler.HandleCreate))
	mux.Handle("GET /diets", protect(dietHandler.HandleGetAll))
	mux.Handle("GET /pizza-types", protect(pizzaTypeHandler.HandleGetAll))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return middleware.RequestLogger(log)(mux)
}
