package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/ScentGo/internal/favorite"
	"github.com/utafrali/ScentGo/internal/stats"
	"github.com/utafrali/ScentGo/pkg/httputil"
)

// FavoriteHandler serves the device's favorite set.
type FavoriteHandler struct {
	store  *favorite.Store
	stats  *stats.Aggregator
	logger *slog.Logger
}

// NewFavoriteHandler creates a new favorite HTTP handler.
func NewFavoriteHandler(store *favorite.Store, agg *stats.Aggregator, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{store: store, stats: agg, logger: logger}
}

// ToggleResponse is the body returned after a toggle.
type ToggleResponse struct {
	IDs      []string `json:"ids"`
	Favorite bool     `json:"favorite"`
}

// List handles GET /api/v1/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	perfumes, err := h.stats.ForFavorites(r.Context(), h.store)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, perfumes)
}

// Toggle handles PUT /api/v1/favorites/{id}
func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	isFavorite, ids, err := h.store.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, ToggleResponse{IDs: ids, Favorite: isFavorite})
}
