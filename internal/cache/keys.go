package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// RefactoredKey addresses the last refactoring produced for a file with the
// given source hash.
func RefactoredKey(fileName, sourceHash string) string {
	return fmt.Sprintf("refactored:%s:%s", fileName, sourceHash)
}

func ReviewKey(reviewID uuid.UUID) string {
	return fmt.Sprintf("review:%s", reviewID)
}

// RateLimitKey scopes a rate-limit counter to an API key prefix or client address.
func RateLimitKey(identity string) string {
	return fmt.Sprintf("ratelimit:%s", identity)
}
