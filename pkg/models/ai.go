// Package models contains shared data models used across the ReelInsight codebase.
package models

import "context"

// AIProvider is the core interface that all language-model integrations must implement.
// Never call specific AI providers directly — always inject this interface.
type AIProvider interface {
	// Complete sends a single-turn chat prompt and returns the raw text reply.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}

// CompletionRequest is the input to a chat completion.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	// JSON asks the provider for a JSON-only reply where the API supports it.
	JSON bool
}
