package sales

import (
	"context"
	"errors"
	"net/http"

	"github.com/slicehouse/catalog-service/app/api"
)

type Seller interface {
	Sell(ctx context.Context, skus []string) error
}

type SellHandler struct {
	seller Seller
}

func NewSellHandler(s Seller) *SellHandler {
	return &SellHandler{seller: s}
}

func (h *SellHandler) HandleSell(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SKUs []string `json:"skus" validate:"required,min=1,dive,required"`
	}
	if err := api.DecodeJSON(r, &input); err != nil {
		if errors.Is(err, api.ErrInvalidJSON) {
			api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		api.ErrorResponse(w, http.StatusBadRequest, "SKUs are required")
		return
	}

	if err := h.seller.Sell(r.Context(), input.SKUs); err != nil {
		api.DomainError(w, err, "Failed to sell products")
		return
	}

	api.OKResponse(w, http.StatusOK, map[string]string{
		"message": "Products sold successfully",
	})
}
