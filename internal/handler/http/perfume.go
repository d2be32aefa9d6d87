package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/ScentGo/internal/search"
	"github.com/utafrali/ScentGo/internal/stats"
	"github.com/utafrali/ScentGo/pkg/httputil"
)

// PerfumeHandler serves the catalog with derived stats.
type PerfumeHandler struct {
	stats  *stats.Aggregator
	logger *slog.Logger
}

// NewPerfumeHandler creates a new perfume HTTP handler.
func NewPerfumeHandler(agg *stats.Aggregator, logger *slog.Logger) *PerfumeHandler {
	return &PerfumeHandler{stats: agg, logger: logger}
}

// List handles GET /api/v1/perfumes?q=
func (h *PerfumeHandler) List(w http.ResponseWriter, r *http.Request) {
	perfumes, err := h.stats.Aggregate(r.Context(), nil)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, search.Filter(perfumes, r.URL.Query().Get("q")))
}

// Get handles GET /api/v1/perfumes/{id}
func (h *PerfumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	perfume, err := h.stats.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, perfume)
}
