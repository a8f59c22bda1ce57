package models

// Sentiment is the tone of a reel as judged by the language model.
type Sentiment struct {
	Score      float64 `json:"score"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the structured content analysis of a reel transcript.
type Analysis struct {
	Sentiment Sentiment `json:"sentiment"`
	Topics    []string  `json:"topics"`
	Keywords  []string  `json:"keywords"`
	Category  string    `json:"category"`
	Summary   string    `json:"summary"`
}

const (
	MaxTopics   = 5
	MaxKeywords = 10

	CategoryOther = "other"
)

// Categories is the fixed set the analyzer may assign.
var Categories = []string{
	"entertainment", "education", "lifestyle", "business", "fitness", "food",
	"travel", "technology", "fashion", "music", "comedy", CategoryOther,
}

// SentimentLabels is the fixed set of sentiment labels.
var SentimentLabels = []string{"very negative", "negative", "neutral", "positive", "very positive"}

// FallbackSummary is the summary carried by FallbackAnalysis.
const FallbackSummary = "Content analysis unavailable - OpenAI API error"

// FallbackAnalysis returns the default analysis used when the model cannot
// produce a valid one. Each call returns a fresh value.
func FallbackAnalysis() Analysis {
	return Analysis{
		Sentiment: Sentiment{Score: 0, Label: "neutral", Confidence: 0.5},
		Topics:    []string{"General content"},
		Keywords:  []string{"instagram", "reel"},
		Category:  CategoryOther,
		Summary:   FallbackSummary,
	}
}

// IsCategory reports whether c is one of Categories.
func IsCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
