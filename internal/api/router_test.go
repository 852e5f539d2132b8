package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/codereview/internal/api"
	mw "github.com/kiranshivaraju/codereview/internal/api/middleware"
	"github.com/kiranshivaraju/codereview/internal/cache"
	"github.com/kiranshivaraju/codereview/internal/store"
	"github.com/kiranshivaraju/codereview/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stub store that returns empty results (all auth fails) ---

type stubStore struct{}

func (s *stubStore) Ping(_ context.Context) error { return nil }
func (s *stubStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *stubStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (s *stubStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error     { return nil }
func (s *stubStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error         { return nil }
func (s *stubStore) CreateReview(_ context.Context, _ *models.Review) error     { return nil }
func (s *stubStore) GetReview(_ context.Context, _ uuid.UUID) (*models.Review, error) {
	return nil, store.ErrNotFound
}
func (s *stubStore) ListReviews(_ context.Context, _ store.ReviewFilter) ([]*models.Review, int, error) {
	return nil, 0, nil
}

// --- stub cache ---

type stubCache struct{}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ string) error                          { return nil }
func (c *stubCache) Ping(_ context.Context) error                                      { return nil }
func (c *stubCache) Close() error                                                      { return nil }
func (c *stubCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

// --- router tests ---

func okJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func newTestRouter(withAuth bool) http.Handler {
	deps := api.Dependencies{
		RateLimit:            mw.NewRateLimit(&stubCache{}, 60),
		HealthHandler:        okJSON,
		AnalyzeHandler:       okJSON,
		LegacyAnalyzeHandler: okJSON,
		ListReviewsHandler:   okJSON,
		GetReviewHandler:     okJSON,
	}
	if withAuth {
		deps.Auth = mw.NewAuth(&stubStore{})
	}
	return api.NewRouter(deps)
}

func TestRouter_HealthEndpoint_Public(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

var protectedEndpoints = []struct {
	method string
	path   string
}{
	{"POST", "/api/v1/analyze"},
	{"POST", "/api/analyze"},
	{"GET", "/api/v1/reviews"},
	{"GET", "/api/v1/reviews/" + uuid.NewString()},
}

func TestRouter_ProtectedEndpoints_RequireAuth(t *testing.T) {
	router := newTestRouter(true)

	for _, ep := range protectedEndpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			errObj := body["error"].(map[string]any)
			assert.Equal(t, "INVALID_TOKEN", errObj["code"])
		})
	}
}

func TestRouter_AuthDisabled(t *testing.T) {
	router := newTestRouter(false)

	for _, ep := range protectedEndpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "60", w.Header().Get("X-RateLimit-Limit"))
		})
	}
}

func TestRouter_RequestIDHeaderAccepted(t *testing.T) {
	router := newTestRouter(false)

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MissingHandlerIsNotImplemented(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	req := httptest.NewRequest("GET", "/api/v1/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(true)

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Verify unused interfaces are satisfied
var _ store.Store = (*stubStore)(nil)
var _ cache.Cache = (*stubCache)(nil)
