package mock

import (
	"context"
	"sync/atomic"

	"github.com/kiranshivaraju/reelinsight/internal/ai"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

// ValidAnalysisJSON is the completion NewMockProvider returns.
const ValidAnalysisJSON = `{
  "sentiment": {"score": 0.7, "label": "positive", "confidence": 0.9},
  "topics": ["cooking", "pasta"],
  "keywords": ["recipe", "garlic", "olive oil"],
  "category": "food",
  "summary": "A quick pasta recipe with garlic and olive oil."
}`

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, req models.CompletionRequest) (string, error)

	calls atomic.Int64
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	m.calls.Add(1)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Calls reports how many times Complete was invoked.
func (m *MockProvider) Calls() int { return int(m.calls.Load()) }

// NewMockProvider returns a MockProvider with a well-formed analysis response.
func NewMockProvider() *MockProvider {
	return NewStaticProvider(ValidAnalysisJSON)
}

// NewStaticProvider returns a MockProvider that always answers with text.
func NewStaticProvider(text string) *MockProvider {
	return &MockProvider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return text, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
