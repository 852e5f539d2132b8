package ai

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/singleflight"

	"github.com/kiranshivaraju/codereview/internal/cache"
	"github.com/kiranshivaraju/codereview/internal/heuristics"
	"github.com/kiranshivaraju/codereview/internal/store"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

// ParseFailureSuggestion is the only suggestion given for unparseable input.
const ParseFailureSuggestion = "Parsing failed."

const (
	// reviewCacheTTL bounds how long a stored review is served from the cache.
	reviewCacheTTL = time.Hour
	// runSlack is added to the provider budget of a shared review run.
	runSlack = 10 * time.Second
)

// ReviewService runs the review pipeline: heuristic checks, AI suggestions,
// refactoring, scoring and persistence.
type ReviewService struct {
	provider models.AIProvider
	store    store.Store
	cache    cache.Cache
	timeout  time.Duration
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewReviewService creates a new ReviewService. timeout bounds each provider
// call; cacheTTL bounds how long a refactoring is remembered for re-review.
func NewReviewService(provider models.AIProvider, st store.Store, ca cache.Cache, timeout, cacheTTL time.Duration) *ReviewService {
	return &ReviewService{
		provider: provider,
		store:    st,
		cache:    ca,
		timeout:  timeout,
		cacheTTL: cacheTTL,
	}
}

// SourceHash returns the hex blake3 digest of source.
func SourceHash(source string) string {
	sum := blake3.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Review analyzes one source file. Provider failures degrade to heuristic
// suggestions and rewriting; only cancellation of ctx fails the review.
// Concurrent reviews of the same file and content share one run, which is
// detached from any single caller so one caller giving up does not fail the
// others.
func (s *ReviewService) Review(ctx context.Context, fileName, source string) (models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("review: %w", err)
	}

	hash := SourceHash(source)
	key := cache.RefactoredKey(fileName, hash)

	ch := s.group.DoChan(key, func() (any, error) {
		runCtx, cancel := s.runContext(ctx)
		defer cancel()
		return s.review(runCtx, fileName, source, hash, key)
	})

	select {
	case <-ctx.Done():
		return models.AnalysisResult{}, fmt.Errorf("review: %w", ctx.Err())
	case res := <-ch:
		if err := ctx.Err(); err != nil {
			return models.AnalysisResult{}, fmt.Errorf("review: %w", err)
		}
		if res.Err != nil {
			return models.AnalysisResult{}, res.Err
		}
		if res.Shared {
			slog.DebugContext(ctx, "review shared with concurrent request", "file_name", fileName)
		}
		return res.Val.(models.AnalysisResult).Clone(), nil
	}
}

// runContext detaches a shared run from the caller that started it. The run
// keeps the caller's values and is bounded by two provider calls plus slack.
func (s *ReviewService) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.timeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, 2*s.timeout+runSlack)
}

func (s *ReviewService) review(ctx context.Context, fileName, source, hash, key string) (models.AnalysisResult, error) {
	start := time.Now()
	result := models.AnalysisResult{
		FileName:       fileName,
		OriginalSource: source,
	}

	if err := heuristics.Validate(source); err != nil {
		slog.InfoContext(ctx, "source failed validation", "file_name", fileName, "error", err)
		result.Issues = []models.Issue{{Line: 1, Message: heuristics.MsgParseFailure}}
		result.OriginalScore = 0
		result.AISuggestions = models.Suggestions{ParseFailureSuggestion}
		s.persist(ctx, &result, hash)
		return result, nil
	}

	issues := heuristics.FindIssues(source)
	result.Issues = issues
	result.OriginalScore = heuristics.Score(issues)

	startSource, revisit := s.previousRefactoring(ctx, key, source)

	suggestions := s.suggest(ctx, fileName, issues, revisit)
	result.AISuggestions = suggestions

	refactored := s.refactor(ctx, fileName, startSource, suggestions, revisit)
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("review: %w", err)
	}

	refactoredScore := 0
	if heuristics.Validate(refactored) == nil {
		refactoredScore = heuristics.Score(heuristics.FindIssues(refactored))
	}
	result.RefactoredSource = &refactored
	result.RefactoredScore = &refactoredScore

	if err := s.cache.Set(ctx, key, []byte(refactored), s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "failed to cache refactoring", "file_name", fileName, "error", err)
	}

	s.persist(ctx, &result, hash)

	slog.InfoContext(ctx, "review completed",
		"file_name", fileName,
		"issues", len(issues),
		"original_score", result.OriginalScore,
		"refactored_score", refactoredScore,
		"revisit", revisit,
		"provider", s.provider.Name(),
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

// previousRefactoring returns the cached refactoring of this exact source, if
// any, as the starting point for another pass.
func (s *ReviewService) previousRefactoring(ctx context.Context, key, source string) (string, bool) {
	prev, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "refactoring cache lookup failed", "error", err)
		return source, false
	}
	if !ok || len(prev) == 0 {
		return source, false
	}
	return string(prev), true
}

func (s *ReviewService) suggest(ctx context.Context, fileName string, issues []models.Issue, revisit bool) models.Suggestions {
	aiCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	reply, err := s.provider.Suggest(aiCtx, models.SuggestRequest{
		FileName: fileName,
		Issues:   issues,
		Revisit:  revisit,
	})
	if err != nil {
		s.logProviderError(ctx, "suggest", err)
		return HeuristicSuggestions(issues)
	}

	if parsed := ParseSuggestions(reply); len(parsed) > 0 {
		return parsed
	}
	return HeuristicSuggestions(issues)
}

func (s *ReviewService) refactor(ctx context.Context, fileName, source string, suggestions []string, revisit bool) string {
	aiCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	reply, err := s.provider.Refactor(aiCtx, models.RefactorRequest{
		FileName:    fileName,
		Source:      source,
		Suggestions: suggestions,
		Revisit:     revisit,
	})
	if err != nil {
		s.logProviderError(ctx, "refactor", err)
		return heuristics.Rewrite(source)
	}

	code, ok := ExtractCode(reply)
	if !ok {
		slog.WarnContext(ctx, "refactor reply had no code block", "provider", s.provider.Name())
		return heuristics.Rewrite(source)
	}
	return code
}

func (s *ReviewService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *ReviewService) logProviderError(ctx context.Context, op string, err error) {
	if errors.Is(err, ErrProviderDisabled) {
		slog.DebugContext(ctx, "ai provider disabled, using heuristics", "op", op)
		return
	}
	slog.WarnContext(ctx, "ai provider call failed, using heuristics",
		"op", op,
		"provider", s.provider.Name(),
		"error", err)
}

// persist stores the review and stamps its ID on result. Failures are logged
// and leave result without an ID.
func (s *ReviewService) persist(ctx context.Context, result *models.AnalysisResult, hash string) {
	if s.store == nil {
		return
	}

	review := &models.Review{
		ID:              uuid.New(),
		FileName:        result.FileName,
		SourceHash:      hash,
		OriginalScore:   result.OriginalScore,
		RefactoredScore: result.RefactoredScore,
		IssueCount:      len(result.Issues),
		Provider:        s.provider.Name(),
		Model:           s.provider.Model(),
		CreatedAt:       time.Now().UTC(),
	}
	review.Result = result.Clone()
	review.Result.ReviewID = review.ID.String()

	if err := s.store.CreateReview(ctx, review); err != nil {
		slog.ErrorContext(ctx, "failed to persist review", "file_name", result.FileName, "error", err)
		return
	}
	result.ReviewID = review.ID.String()
}

// GetReview returns a stored review, serving repeated reads from the cache.
func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	key := cache.ReviewKey(id)

	var cached models.Review
	if ok, err := cache.GetJSON(ctx, s.cache, key, &cached); err != nil {
		slog.WarnContext(ctx, "review cache lookup failed", "review_id", id, "error", err)
	} else if ok {
		return &cached, nil
	}

	review, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	if err := cache.SetJSON(ctx, s.cache, key, review, reviewCacheTTL); err != nil {
		slog.WarnContext(ctx, "failed to cache review", "review_id", id, "error", err)
	}
	return review, nil
}

// ListReviews returns one page of review summaries and the total match count.
func (s *ReviewService) ListReviews(ctx context.Context, filter store.ReviewFilter) ([]models.ReviewSummary, int, error) {
	reviews, total, err := s.store.ListReviews(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	summaries := make([]models.ReviewSummary, 0, len(reviews))
	for _, r := range reviews {
		summaries = append(summaries, r.Summary())
	}
	return summaries, total, nil
}
