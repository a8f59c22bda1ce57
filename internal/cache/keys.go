package cache

const (
	jobStatusPrefix = "job:"
	resultPrefix    = "reel:result:"
	rateLimitPrefix = "ratelimit:"
)

// JobStatusKey holds the pipeline status of one job.
func JobStatusKey(jobID string) string { return jobStatusPrefix + jobID }

// ResultKey holds a JSON-encoded reel result for the redis store backend.
func ResultKey(id string) string { return resultPrefix + id }

// RateLimitKey holds the request counter of one client for the current window.
func RateLimitKey(client string) string { return rateLimitPrefix + client }
