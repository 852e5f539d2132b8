package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is the persisted record of one server-side analysis.
// Result holds the full AnalysisResult as returned to the client.
type Review struct {
	ID              uuid.UUID      `db:"id"               json:"id"`
	FileName        string         `db:"file_name"        json:"file_name"`
	SourceHash      string         `db:"source_hash"      json:"source_hash"`
	OriginalScore   int            `db:"original_score"   json:"original_score"`
	RefactoredScore *int           `db:"refactored_score" json:"refactored_score,omitempty"`
	IssueCount      int            `db:"issue_count"      json:"issue_count"`
	Provider        string         `db:"provider"         json:"provider"`
	Model           string         `db:"model"            json:"model"`
	Result          AnalysisResult `db:"result"           json:"result"`
	CreatedAt       time.Time      `db:"created_at"       json:"created_at"`
}

// ReviewSummary is the list view of a Review without the embedded sources.
type ReviewSummary struct {
	ID              uuid.UUID `json:"id"`
	FileName        string    `json:"file_name"`
	OriginalScore   int       `json:"original_score"`
	RefactoredScore *int      `json:"refactored_score,omitempty"`
	IssueCount      int       `json:"issue_count"`
	Provider        string    `json:"provider"`
	CreatedAt       time.Time `json:"created_at"`
}

// Summary strips the sources from a review.
func (r Review) Summary() ReviewSummary {
	return ReviewSummary{
		ID:              r.ID,
		FileName:        r.FileName,
		OriginalScore:   r.OriginalScore,
		RefactoredScore: r.RefactoredScore,
		IssueCount:      r.IssueCount,
		Provider:        r.Provider,
		CreatedAt:       r.CreatedAt,
	}
}
