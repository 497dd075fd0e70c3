package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/marketplace"
)

// MarketplaceHandler serves the bot catalogue
type MarketplaceHandler struct {
	catalog *marketplace.Catalog
}

// NewMarketplaceHandler creates a new marketplace handler
func NewMarketplaceHandler(catalog *marketplace.Catalog) *MarketplaceHandler {
	return &MarketplaceHandler{catalog: catalog}
}

// List filters and sorts the catalogue.
// Query: category, rarity, available=true, maxPrice, sort (rating|price|winRate|newest)
// GET /api/marketplace/bots
func (h *MarketplaceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	by, err := marketplace.ParseSortKey(q.Get("sort"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := marketplace.Filter{
		Category:      contracts.BotCategory(q.Get("category")),
		Rarity:        contracts.BotRarity(q.Get("rarity")),
		AvailableOnly: q.Get("available") == "true",
	}
	if v := q.Get("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil || maxPrice < 0 {
			respondError(w, http.StatusBadRequest, "Invalid maxPrice")
			return
		}
		filter.MaxPrice = maxPrice
	}

	respondJSON(w, http.StatusOK, marketplace.Sort(h.catalog.List(filter), by))
}

// Get returns one listing
// GET /api/marketplace/bots/{id}
func (h *MarketplaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	bot, err := h.catalog.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, bot)
}
