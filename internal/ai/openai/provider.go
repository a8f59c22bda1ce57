package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/reelinsight/internal/ai/chat"
	"github.com/kiranshivaraju/reelinsight/internal/config"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chat.Message  `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Provider implements models.AIProvider against the OpenAI chat completions
// API or any server that speaks it.
type Provider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return NewCompatible("openai", cfg.BaseURL, cfg.APIKey, cfg.Model)
}

// NewCompatible builds a provider for an OpenAI-compatible endpoint. baseURL
// must include the version segment, e.g. http://host:8000/v1.
func NewCompatible(name, baseURL, apiKey, model string) *Provider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Provider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  chat.NewHTTPClient(),
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func (p *Provider) WithHTTPClient(c *http.Client) *Provider {
	p.client = c
	return p
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	payload := chatRequest{
		Model:       p.model,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		payload.Messages = append(payload.Messages, chat.Message{Role: "system", Content: req.System})
	}
	payload.Messages = append(payload.Messages, chat.Message{Role: "user", Content: req.Prompt})
	if req.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	var out chatResponse
	if err := chat.PostJSON(ctx, p.client, p.baseURL+"/chat/completions", headers, payload, &out); err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s: %w: no choices", p.name, chat.ErrInvalidResponse)
	}
	return out.Choices[0].Message.Content, nil
}

var _ models.AIProvider = (*Provider)(nil)
