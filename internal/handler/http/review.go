package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/ScentGo/internal/review"
	"github.com/utafrali/ScentGo/pkg/httputil"
	"github.com/utafrali/ScentGo/pkg/validator"
)

// ReviewHandler serves merged review lists and local drafts.
type ReviewHandler struct {
	service *review.Service
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *review.Service, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// SubmitReviewRequest is the JSON request body for drafting a review.
type SubmitReviewRequest struct {
	Comment string `json:"comment" validate:"required,notblank,max=2000"`
}

// List handles GET /api/v1/perfumes/{id}/reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.ListForPerfume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, reviews)
}

// Submit handles POST /api/v1/perfumes/{id}/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req SubmitReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rv, err := h.service.Submit(r.Context(), chi.URLParam(r, "id"), req.Comment)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, rv)
}

// Mine handles GET /api/v1/me/reviews
func (h *ReviewHandler) Mine(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.MyReviews(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, reviews)
}
