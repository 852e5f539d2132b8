package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/codereview/internal/store"
	"github.com/kiranshivaraju/codereview/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("codereview_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, store.RunMigrations(connStr))
	// second run is a no-op
	require.NoError(t, store.RunMigrations(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func newKey(prefix string) *models.APIKey {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.APIKey{
		ID:        uuid.New(),
		Name:      "key-" + prefix,
		KeyHash:   "bcrypt-hash-" + prefix,
		KeyPrefix: prefix,
		Scopes:    []string{"review", "read"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newReview(fileName string, createdAt time.Time) *models.Review {
	refactored := "class A {}"
	refactoredScore := 100
	return &models.Review{
		ID:              uuid.New(),
		FileName:        fileName,
		SourceHash:      "hash-" + fileName,
		OriginalScore:   62,
		RefactoredScore: &refactoredScore,
		IssueCount:      2,
		Provider:        "ollama",
		Model:           "llama3",
		Result: models.AnalysisResult{
			FileName:       fileName,
			OriginalSource: "class A { }",
			OriginalScore:  62,
			Issues: []models.Issue{
				{Line: 3, Message: "Use a logger instead of System.out.println."},
				{Line: 5, Message: "TODO/FIXME comment found."},
			},
			AISuggestions:    models.Suggestions{"Replace println with SLF4J."},
			RefactoredScore:  &refactoredScore,
			RefactoredSource: &refactored,
		},
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
	}
}

// --- API Key Tests ---

func TestAPIKey_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	key := newKey("cr_abcd")
	require.NoError(t, s.CreateAPIKey(ctx, key))

	keys, err := s.GetAPIKeyByPrefix(ctx, "cr_abcd")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, key.ID, keys[0].ID)
	assert.Equal(t, "key-cr_abcd", keys[0].Name)
	assert.Equal(t, []string{"review", "read"}, keys[0].Scopes)
	assert.Nil(t, keys[0].LastUsedAt)
}

func TestAPIKey_GetByPrefixNoMatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	keys, err := s.GetAPIKeyByPrefix(context.Background(), "cr_none")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestAPIKey_Revoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	key := newKey("cr_revk")
	require.NoError(t, s.CreateAPIKey(ctx, key))

	require.NoError(t, s.RevokeAPIKey(ctx, key.ID))

	keys, err := s.GetAPIKeyByPrefix(ctx, "cr_revk")
	require.NoError(t, err)
	assert.Empty(t, keys)

	// revoking twice reports not found
	assert.ErrorIs(t, s.RevokeAPIKey(ctx, key.ID), store.ErrNotFound)
}

func TestAPIKey_RevokeNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.RevokeAPIKey(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAPIKey_UpdateLastUsed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	key := newKey("cr_used")
	require.NoError(t, s.CreateAPIKey(ctx, key))
	require.NoError(t, s.UpdateAPIKeyLastUsed(ctx, key.ID))

	keys, err := s.GetAPIKeyByPrefix(ctx, "cr_used")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].LastUsedAt)
}

func TestAPIKey_DuplicateID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	key := newKey("cr_dup1")
	require.NoError(t, s.CreateAPIKey(ctx, key))

	key2 := newKey("cr_dup2")
	key2.ID = key.ID
	err := s.CreateAPIKey(ctx, key2)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

// --- Review Tests ---

func TestReview_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	review := newReview("Foo.java", time.Now())
	require.NoError(t, s.CreateReview(ctx, review))

	got, err := s.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, got.ID)
	assert.Equal(t, "Foo.java", got.FileName)
	assert.Equal(t, 62, got.OriginalScore)
	require.NotNil(t, got.RefactoredScore)
	assert.Equal(t, 100, *got.RefactoredScore)
	assert.Equal(t, review.CreatedAt, got.CreatedAt.UTC())

	assert.Equal(t, review.ID.String(), got.Result.ReviewID)
	assert.Equal(t, review.Result.Issues, got.Result.Issues)
	assert.Equal(t, review.Result.AISuggestions, got.Result.AISuggestions)
	assert.True(t, got.Result.HasRefactoring())
	assert.Equal(t, "class A {}", *got.Result.RefactoredSource)
}

func TestReview_WithoutRefactoring(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	review := newReview("Broken.java", time.Now())
	review.RefactoredScore = nil
	review.Result.RefactoredScore = nil
	review.Result.RefactoredSource = nil
	require.NoError(t, s.CreateReview(ctx, review))

	got, err := s.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefactoredScore)
	assert.False(t, got.Result.HasRefactoring())
}

func TestReview_GetNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetReview(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReview_DuplicateID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	review := newReview("Foo.java", time.Now())
	require.NoError(t, s.CreateReview(ctx, review))
	assert.ErrorIs(t, s.CreateReview(ctx, review), store.ErrDuplicateKey)
}

func TestReview_ListNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		r := newReview("File.java", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.CreateReview(ctx, r))
		ids = append(ids, r.ID)
	}

	reviews, total, err := s.ListReviews(ctx, store.ReviewFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, ids[4], reviews[0].ID)
	assert.Equal(t, ids[3], reviews[1].ID)
	// list rows carry no embedded result
	assert.Empty(t, reviews[0].Result.OriginalSource)

	page3, total, err := s.ListReviews(ctx, store.ReviewFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page3, 1)
	assert.Equal(t, ids[0], page3[0].ID)
}

func TestReview_ListWithFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	old := newReview("Foo.java", time.Now().Add(-48*time.Hour))
	recentFoo := newReview("Foo.java", time.Now().Add(-time.Hour))
	recentBar := newReview("Bar.java", time.Now().Add(-time.Hour))
	for _, r := range []*models.Review{old, recentFoo, recentBar} {
		require.NoError(t, s.CreateReview(ctx, r))
	}

	reviews, total, err := s.ListReviews(ctx, store.ReviewFilter{FileName: "Foo.java"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, reviews, 2)

	reviews, total, err = s.ListReviews(ctx, store.ReviewFilter{
		FileName: "Foo.java",
		Since:    time.Now().Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, reviews, 1)
	assert.Equal(t, recentFoo.ID, reviews[0].ID)
}

func TestReview_ListEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	reviews, total, err := s.ListReviews(context.Background(), store.ReviewFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

// --- Ping Test ---

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.Ping(context.Background())
	assert.NoError(t, err)
}

func TestReviewFilter_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		in    store.ReviewFilter
		page  int
		limit int
	}{
		{"defaults", store.ReviewFilter{}, 1, 20},
		{"negative", store.ReviewFilter{Page: -2, Limit: -5}, 1, 20},
		{"clamped", store.ReviewFilter{Page: 4, Limit: 500}, 4, 100},
		{"kept", store.ReviewFilter{Page: 2, Limit: 50}, 2, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.limit, got.Limit)
		})
	}
}
