package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/ScentGo/internal/profile"
	"github.com/utafrali/ScentGo/pkg/httputil"
	"github.com/utafrali/ScentGo/pkg/middleware"
)

// ProfileHandler serves the profile summary.
type ProfileHandler struct {
	service *profile.Service
	logger  *slog.Logger
}

// NewProfileHandler creates a new profile HTTP handler.
func NewProfileHandler(svc *profile.Service, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: svc, logger: logger}
}

// Get handles GET /api/v1/me/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, summary)
}
