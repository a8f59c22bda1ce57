package models

import "time"

const (
	AnalysisSourceModel    = "model"
	AnalysisSourceFallback = "fallback"
)

// ReelResult is the immutable record produced by one pipeline run.
// The API returns its id on POST /api/process-reel; the client then fetches the
// full record with GET /api/process-reel?id=.
type ReelResult struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Transcript     string    `json:"transcript"`
	Analysis       Analysis  `json:"analysis"`
	AnalysisSource string    `json:"analysis_source"`
	VideoBase64    string    `json:"video_base64"`
	ProcessedAt    time.Time `json:"processed_at"`
}
