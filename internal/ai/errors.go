package ai

import "github.com/kiranshivaraju/reelinsight/internal/ai/chat"

var (
	ErrProviderUnavailable = chat.ErrProviderUnavailable
	ErrInferenceTimeout    = chat.ErrInferenceTimeout
	ErrInvalidResponse     = chat.ErrInvalidResponse
)
