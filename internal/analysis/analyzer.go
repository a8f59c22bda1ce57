// Package analysis turns a transcript into a structured content analysis
// using the configured language model.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

// Outcome is the result of one analysis attempt. Source tells whether the
// Analysis came from the model or is the fallback; Reason is set for the latter.
type Outcome struct {
	Analysis models.Analysis
	Source   string
	Reason   string
}

// Degraded reports whether the fallback analysis was used.
func (o Outcome) Degraded() bool {
	return o.Source == models.AnalysisSourceFallback
}

func fallback(reason string) Outcome {
	return Outcome{
		Analysis: models.FallbackAnalysis(),
		Source:   models.AnalysisSourceFallback,
		Reason:   reason,
	}
}

// Analyzer never fails: every error is folded into a fallback Outcome.
type Analyzer struct {
	provider models.AIProvider
	timeout  time.Duration
}

func NewAnalyzer(provider models.AIProvider, timeout time.Duration) *Analyzer {
	return &Analyzer{provider: provider, timeout: timeout}
}

func (a *Analyzer) Analyze(ctx context.Context, transcript string) Outcome {
	if a.provider == nil {
		return fallback("no language model provider configured")
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.provider.Complete(ctx, models.CompletionRequest{
		System:      SystemPrompt,
		Prompt:      BuildPrompt(transcript),
		Temperature: Temperature,
		JSON:        true,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%s timed out after %s: %w", a.provider.Name(), a.timeout, err)
		}
		return fallback(err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return fallback("empty response from " + a.provider.Name())
	}

	parsed, err := ParseAnalysis(text)
	if err != nil {
		slog.DebugContext(ctx, "unparseable model response", "provider", a.provider.Name(), "response", text)
		return fallback(err.Error())
	}

	return Outcome{Analysis: parsed, Source: models.AnalysisSourceModel}
}
