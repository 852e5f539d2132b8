package ai

import "github.com/kiranshivaraju/codereview/pkg/models"

var (
	ErrProviderUnavailable = models.ErrProviderUnavailable
	ErrProviderDisabled    = models.ErrProviderDisabled
	ErrInferenceTimeout    = models.ErrInferenceTimeout
	ErrInvalidResponse     = models.ErrInvalidResponse
)
