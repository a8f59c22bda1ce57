package analysis_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kiranshivaraju/reelinsight/internal/ai"
	"github.com/kiranshivaraju/reelinsight/internal/ai/mock"
	"github.com/kiranshivaraju/reelinsight/internal/analysis"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- BuildPrompt ---

func TestBuildPrompt_ContainsTranscriptAndSchema(t *testing.T) {
	p := analysis.BuildPrompt("we made pasta today")

	assert.Contains(t, p, "Transcript:\n\"we made pasta today\"")
	assert.Contains(t, p, `"very negative", "negative", "neutral", "positive", "very positive"`)
	assert.Contains(t, p, `"entertainment", "education", "lifestyle", "business", "fitness", "food", "travel", "technology", "fashion", "music", "comedy", "other"`)
	assert.Contains(t, p, "max 5")
	assert.Contains(t, p, "max 10")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(p), "Respond ONLY with valid JSON, no additional text."))
}

// --- ParseAnalysis ---

func TestParseAnalysis_Valid(t *testing.T) {
	a, err := analysis.ParseAnalysis(mock.ValidAnalysisJSON)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, a.Sentiment.Score, 1e-9)
	assert.Equal(t, "positive", a.Sentiment.Label)
	assert.InDelta(t, 0.9, a.Sentiment.Confidence, 1e-9)
	assert.Equal(t, []string{"cooking", "pasta"}, a.Topics)
	assert.Equal(t, []string{"recipe", "garlic", "olive oil"}, a.Keywords)
	assert.Equal(t, "food", a.Category)
	assert.Equal(t, "A quick pasta recipe with garlic and olive oil.", a.Summary)
}

func TestParseAnalysis_CodeFenceAndProse(t *testing.T) {
	text := "Sure! Here is the analysis:\n```json\n" + mock.ValidAnalysisJSON + "\n```\nHope this helps."
	a, err := analysis.ParseAnalysis(text)
	require.NoError(t, err)
	assert.Equal(t, "food", a.Category)
}

func TestParseAnalysis_NoJSON(t *testing.T) {
	_, err := analysis.ParseAnalysis("I cannot analyze this content.")
	assert.ErrorIs(t, err, analysis.ErrNoJSON)
}

func TestParseAnalysis_Malformed(t *testing.T) {
	_, err := analysis.ParseAnalysis(`{"sentiment": {"score": 0.1,}`)
	require.Error(t, err)
}

func TestParseAnalysis_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		missing string
	}{
		{"sentiment", `{"topics":[],"keywords":[],"category":"food","summary":"s"}`, "sentiment"},
		{"topics", `{"sentiment":{},"keywords":[],"category":"food","summary":"s"}`, "topics"},
		{"keywords", `{"sentiment":{},"topics":[],"category":"food","summary":"s"}`, "keywords"},
		{"category", `{"sentiment":{},"topics":[],"keywords":[],"category":" ","summary":"s"}`, "category"},
		{"summary", `{"sentiment":{},"topics":[],"keywords":[],"category":"food"}`, "summary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analysis.ParseAnalysis(tt.json)
			require.ErrorIs(t, err, analysis.ErrMissingFields)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestParseAnalysis_EmptyListsAccepted(t *testing.T) {
	a, err := analysis.ParseAnalysis(`{"sentiment":{"score":0,"label":"neutral","confidence":1},"topics":[],"keywords":[],"category":"music","summary":"Humming."}`)
	require.NoError(t, err)
	assert.NotNil(t, a.Topics)
	assert.Empty(t, a.Topics)
	assert.NotNil(t, a.Keywords)
}

func TestParseAnalysis_Normalizes(t *testing.T) {
	text := `{
	  "sentiment": {"score": 3.5, "label": "  Very Positive ", "confidence": -2},
	  "topics": ["a", " ", "b", "c", "d", "e", "f", "g"],
	  "keywords": ["1","2","3","4","5","6","7","8","9","10","11","12"],
	  "category": "Cooking",
	  "summary": "  padded  "
	}`
	a, err := analysis.ParseAnalysis(text)
	require.NoError(t, err)

	assert.Equal(t, 1.0, a.Sentiment.Score)
	assert.Equal(t, "very positive", a.Sentiment.Label)
	assert.Equal(t, 0.0, a.Sentiment.Confidence)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, a.Topics)
	assert.Len(t, a.Keywords, models.MaxKeywords)
	assert.Equal(t, models.CategoryOther, a.Category)
	assert.Equal(t, "padded", a.Summary)
}

func TestParseAnalysis_LabelDerivedFromScore(t *testing.T) {
	tests := []struct {
		score string
		want  string
	}{
		{"-0.9", "very negative"},
		{"-0.4", "negative"},
		{"0", "neutral"},
		{"0.4", "positive"},
		{"0.9", "very positive"},
	}
	for _, tt := range tests {
		t.Run(tt.score, func(t *testing.T) {
			text := `{"sentiment":{"score":` + tt.score +
				`,"label":"meh","confidence":0.5},"topics":[],"keywords":[],"category":"other","summary":"s"}`
			a, err := analysis.ParseAnalysis(text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Sentiment.Label)
		})
	}
}

// --- Analyzer ---

func TestAnalyze_ModelSuccess(t *testing.T) {
	p := mock.NewMockProvider()
	var captured models.CompletionRequest
	inner := p.CompleteFunc
	p.CompleteFunc = func(ctx context.Context, req models.CompletionRequest) (string, error) {
		captured = req
		return inner(ctx, req)
	}

	out := analysis.NewAnalyzer(p, time.Second).Analyze(context.Background(), "pasta night")

	assert.False(t, out.Degraded())
	assert.Equal(t, models.AnalysisSourceModel, out.Source)
	assert.Empty(t, out.Reason)
	assert.Equal(t, "food", out.Analysis.Category)

	assert.Equal(t, analysis.SystemPrompt, captured.System)
	assert.InDelta(t, 0.1, captured.Temperature, 1e-9)
	assert.True(t, captured.JSON)
	assert.Contains(t, captured.Prompt, `"pasta night"`)
}

func TestAnalyze_ProviderErrorFallsBack(t *testing.T) {
	out := analysis.NewAnalyzer(mock.NewFailingProvider(ai.ErrProviderUnavailable), time.Second).
		Analyze(context.Background(), "x")

	assert.True(t, out.Degraded())
	assert.Equal(t, models.FallbackAnalysis(), out.Analysis)
	assert.Contains(t, out.Reason, "unavailable")
}

func TestAnalyze_MalformedJSONFallsBack(t *testing.T) {
	out := analysis.NewAnalyzer(mock.NewStaticProvider("{not json"), time.Second).
		Analyze(context.Background(), "x")

	assert.True(t, out.Degraded())
	assert.Equal(t, models.FallbackAnalysis(), out.Analysis)
	assert.NotEmpty(t, out.Reason)
}

func TestAnalyze_EmptyResponseFallsBack(t *testing.T) {
	out := analysis.NewAnalyzer(mock.NewStaticProvider("   "), time.Second).
		Analyze(context.Background(), "x")

	assert.True(t, out.Degraded())
	assert.Contains(t, out.Reason, "empty response")
}

func TestAnalyze_MissingFieldsFallsBack(t *testing.T) {
	out := analysis.NewAnalyzer(mock.NewStaticProvider(`{"summary":"only this"}`), time.Second).
		Analyze(context.Background(), "x")

	assert.True(t, out.Degraded())
	assert.Equal(t, models.FallbackSummary, out.Analysis.Summary)
}

func TestAnalyze_TimeoutFallsBack(t *testing.T) {
	start := time.Now()
	out := analysis.NewAnalyzer(mock.NewTimeoutProvider(), 30*time.Millisecond).
		Analyze(context.Background(), "x")

	assert.True(t, out.Degraded())
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, out.Reason, "timeout")
}

func TestAnalyze_NilProvider(t *testing.T) {
	out := analysis.NewAnalyzer(nil, time.Second).Analyze(context.Background(), "x")
	assert.True(t, out.Degraded())
}

func TestAnalyze_FallbackIsFreshCopy(t *testing.T) {
	a := analysis.NewAnalyzer(mock.NewStaticProvider(""), time.Second)
	first := a.Analyze(context.Background(), "x")
	first.Analysis.Topics[0] = "mutated"

	second := a.Analyze(context.Background(), "x")
	assert.Equal(t, "General content", second.Analysis.Topics[0])
}
