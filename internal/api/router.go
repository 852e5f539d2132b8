package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/codereview/internal/api/middleware"
	"github.com/kiranshivaraju/codereview/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
// A nil Auth disables authentication; a nil RateLimit disables rate limiting.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler        http.HandlerFunc
	AnalyzeHandler       http.HandlerFunc
	LegacyAnalyzeHandler http.HandlerFunc
	ListReviewsHandler   http.HandlerFunc
	GetReviewHandler     http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Authenticate)
		}
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.With(requireScope(deps.Auth, mw.ScopeReview)).
			Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))
		r.With(requireScope(deps.Auth, mw.ScopeReview)).
			Post("/api/analyze", orNotImplemented(deps.LegacyAnalyzeHandler))

		r.Group(func(r chi.Router) {
			r.Use(requireScope(deps.Auth, mw.ScopeRead))

			r.Get("/api/v1/reviews", orNotImplemented(deps.ListReviewsHandler))
			r.Get("/api/v1/reviews/{reviewID}", orNotImplemented(deps.GetReviewHandler))
		})
	})

	return r
}

// requireScope is a pass-through when authentication is disabled.
func requireScope(auth *mw.Auth, scope string) func(http.Handler) http.Handler {
	if auth == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return auth.RequireScope(scope)
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
