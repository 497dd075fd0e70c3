package handlers

import (
	"net/http"

	"github.com/planetprotrader/backend/internal/contracts"
)

// GetPalette returns the enum colour table
// GET /api/meta/palette
func GetPalette(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, contracts.DefaultPalette)
}
