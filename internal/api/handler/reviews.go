package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/codereview/internal/api/response"
	"github.com/kiranshivaraju/codereview/internal/store"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

// ReviewReader defines the read side of stored reviews.
type ReviewReader interface {
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListReviews(ctx context.Context, filter store.ReviewFilter) ([]models.ReviewSummary, int, error)
}

// NewListReviewsHandler returns an http.HandlerFunc for GET /api/v1/reviews.
// Query parameters: file_name, since (RFC3339), page, limit.
func NewListReviewsHandler(svc ReviewReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.ReviewFilter{FileName: q.Get("file_name")}

		var err error
		if filter.Page, err = intParam(q.Get("page")); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be a positive integer", nil)
			return
		}
		if filter.Limit, err = intParam(q.Get("limit")); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", nil)
			return
		}
		if since := q.Get("since"); since != "" {
			filter.Since, err = time.Parse(time.RFC3339, since)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "since must be a valid RFC3339 timestamp", nil)
				return
			}
		}
		filter = filter.Normalize()

		summaries, total, err := svc.ListReviews(r.Context(), filter)
		if err != nil {
			slog.ErrorContext(r.Context(), "list reviews failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.Collection(w, summaries, response.NewMeta(filter.Page, filter.Limit, total))
	}
}

// NewGetReviewHandler returns an http.HandlerFunc for GET /api/v1/reviews/{reviewID}.
func NewGetReviewHandler(svc ReviewReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "reviewID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "reviewID must be a valid UUID", nil)
			return
		}

		review, err := svc.GetReview(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Review not found", nil)
				return
			}
			slog.ErrorContext(r.Context(), "get review failed", "review_id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.JSON(w, review)
	}
}

// intParam parses an optional positive integer query parameter; empty means 0.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}
