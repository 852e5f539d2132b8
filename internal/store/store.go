package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	// ListReviews returns one page of reviews, newest first, without their
	// embedded results, plus the total number of matching reviews.
	ListReviews(ctx context.Context, filter ReviewFilter) ([]*models.Review, int, error)
}

type ReviewFilter struct {
	FileName string
	Since    time.Time
	Page     int
	Limit    int
}

// Normalize clamps pagination to page >= 1 and 1 <= limit <= 100, defaulting limit to 20.
func (f ReviewFilter) Normalize() ReviewFilter {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}
