package models

// Job statuses in pipeline order. A job only moves forward, or to failed.
const (
	JobStatusCreated      = "created"
	JobStatusDownloading  = "downloading"
	JobStatusTranscribing = "transcribing"
	JobStatusAnalyzing    = "analyzing"
	JobStatusPackaging    = "packaging"
	JobStatusStored       = "stored"
	JobStatusFailed       = "failed"
)
