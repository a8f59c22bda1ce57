package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

var (
	ErrNoJSON        = errors.New("no JSON object in model response")
	ErrMissingFields = errors.New("model response missing required fields")
)

type rawSentiment struct {
	Score      float64 `json:"score"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type rawAnalysis struct {
	Sentiment *rawSentiment `json:"sentiment"`
	Topics    []string      `json:"topics"`
	Keywords  []string      `json:"keywords"`
	Category  string        `json:"category"`
	Summary   string        `json:"summary"`
}

// ParseAnalysis extracts the JSON object from a model completion, checks the
// required fields and normalizes values into their documented ranges.
func ParseAnalysis(text string) (models.Analysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return models.Analysis{}, ErrNoJSON
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return models.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}

	var missing []string
	if raw.Sentiment == nil {
		missing = append(missing, "sentiment")
	}
	if raw.Topics == nil {
		missing = append(missing, "topics")
	}
	if raw.Keywords == nil {
		missing = append(missing, "keywords")
	}
	if strings.TrimSpace(raw.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(raw.Summary) == "" {
		missing = append(missing, "summary")
	}
	if len(missing) > 0 {
		return models.Analysis{}, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	return normalize(raw), nil
}

func normalize(raw rawAnalysis) models.Analysis {
	score := clamp(raw.Sentiment.Score, -1, 1)
	label := strings.ToLower(strings.TrimSpace(raw.Sentiment.Label))
	if !isLabel(label) {
		label = labelForScore(score)
	}

	category := strings.ToLower(strings.TrimSpace(raw.Category))
	if !models.IsCategory(category) {
		category = models.CategoryOther
	}

	return models.Analysis{
		Sentiment: models.Sentiment{
			Score:      score,
			Label:      label,
			Confidence: clamp(raw.Sentiment.Confidence, 0, 1),
		},
		Topics:   cleanList(raw.Topics, models.MaxTopics),
		Keywords: cleanList(raw.Keywords, models.MaxKeywords),
		Category: category,
		Summary:  strings.TrimSpace(raw.Summary),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isLabel(l string) bool {
	for _, v := range models.SentimentLabels {
		if v == l {
			return true
		}
	}
	return false
}

// labelForScore buckets a score into five equal-width bands.
func labelForScore(score float64) string {
	switch {
	case score <= -0.6:
		return "very negative"
	case score < -0.2:
		return "negative"
	case score <= 0.2:
		return "neutral"
	case score < 0.6:
		return "positive"
	default:
		return "very positive"
	}
}

// cleanList trims entries, drops blanks and caps the length. The result is
// never nil.
func cleanList(in []string, limit int) []string {
	out := make([]string, 0, min(len(in), limit))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
