package analysis

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

const (
	SystemPrompt = "You are an expert content analyst. Always respond with valid JSON only."
	Temperature  = 0.1
)

const promptTemplate = `
Analyze the following Instagram Reel transcript and provide a JSON response with the following structure:

{
  "sentiment": {
    "score": number (-1 to 1, where -1 is very negative, 0 is neutral, 1 is very positive),
    "label": string (one of: %s),
    "confidence": number (0 to 1, confidence in the sentiment analysis)
  },
  "topics": [array of main topics discussed, max %d],
  "keywords": [array of important keywords/phrases, max %d],
  "category": string (one of: %s),
  "summary": string (brief 1-2 sentence summary of the content)
}

Transcript:
"%s"

Respond ONLY with valid JSON, no additional text.
`

// BuildPrompt renders the analysis instructions around transcript.
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(promptTemplate,
		quoteList(models.SentimentLabels),
		models.MaxTopics,
		models.MaxKeywords,
		quoteList(models.Categories),
		transcript,
	)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, ", ")
}
