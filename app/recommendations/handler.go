package recommendations

import (
	"context"
	"net/http"
	"strconv"

	"github.com/slicehouse/catalog-service/app/api"
)

type Recommender interface {
	Recommend(ctx context.Context, sku string) ([]string, error)
}

type Response struct {
	RecommendedProducts []string         `json:"recommended_products"`
	Ranked              []Recommendation `json:"ranked,omitempty"`
}

type RecommendHandler struct {
	recommender Recommender
}

func NewRecommendHandler(r Recommender) *RecommendHandler {
	return &RecommendHandler{recommender: r}
}

func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	sku := r.PathValue("sku")

	related, err := h.recommender.Recommend(r.Context(), sku)
	if err != nil {
		api.DomainError(w, err, "Failed to fetch recommendations")
		return
	}

	response := Response{RecommendedProducts: related}
	if tally, _ := strconv.ParseBool(r.URL.Query().Get("tally")); tally {
		response.Ranked = Tally(related)
	}
	api.OKResponse(w, http.StatusOK, response)
}
