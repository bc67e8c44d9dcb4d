package categories

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/slicehouse/catalog-service/app/api"
	"github.com/slicehouse/catalog-service/models"
)

type LookupResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type LookupProvider interface {
	ListLookups(ctx context.Context, table models.LookupTable) ([]models.Lookup, error)
	FindOrCreateLookup(ctx context.Context, table models.LookupTable, name string) (uint, error)
}

// CategoryHandler serves one lookup table: categories, diets or pizza types.
type CategoryHandler struct {
	repo  LookupProvider
	table models.LookupTable
}

func NewCategoryHandler(r LookupProvider, table models.LookupTable) *CategoryHandler {
	return &CategoryHandler{repo: r, table: table}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	lookups, err := h.repo.ListLookups(r.Context(), h.table)
	if err != nil {
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch "+h.label())
		return
	}

	response := make([]LookupResponse, len(lookups))
	for i, l := range lookups {
		response[i] = LookupResponse{
			ID:   l.ID,
			Name: l.Name,
		}
	}

	api.OKResponse(w, http.StatusOK, response)
}

// HandleCreate returns the existing row when the name is already taken.
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name" validate:"required,max=255"`
	}

	err := api.DecodeJSON(r, &input)
	if errors.Is(err, api.ErrInvalidJSON) {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	name := strings.TrimSpace(input.Name)
	if err != nil || name == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing name")
		return
	}

	id, err := h.repo.FindOrCreateLookup(r.Context(), h.table, name)
	if err != nil {
		api.DomainError(w, err, "Failed to create "+h.label())
		return
	}

	api.OKResponse(w, http.StatusCreated, LookupResponse{ID: id, Name: name})
}

func (h *CategoryHandler) label() string {
	return strings.ReplaceAll(string(h.table), "_", " ")
}
