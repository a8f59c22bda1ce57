package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/reelinsight/internal/ai/chat"
	"github.com/kiranshivaraju/reelinsight/internal/config"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

const (
	apiVersion = "2023-06-01"
	maxTokens  = 1024
)

type messagesRequest struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	System      string         `json:"system,omitempty"`
	Messages    []chat.Message `json:"messages"`
	Temperature float64        `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Provider implements models.AIProvider using the Anthropic Messages API.
type Provider struct {
	cfg    config.AnthropicConfig
	client *http.Client
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, client: chat.NewHTTPClient()}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func (p *Provider) WithHTTPClient(c *http.Client) *Provider {
	p.client = c
	return p
}

func (p *Provider) Name() string { return "anthropic" }

// Complete ignores req.JSON; the Messages API has no JSON mode and relies on
// the prompt instead.
func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	payload := messagesRequest{
		Model:       p.cfg.Model,
		MaxTokens:   maxTokens,
		System:      req.System,
		Messages:    []chat.Message{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
	}
	headers := map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": apiVersion,
	}

	var out messagesResponse
	if err := chat.PostJSON(ctx, p.client, p.cfg.BaseURL+"/v1/messages", headers, payload, &out); err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic: %w: no text content", chat.ErrInvalidResponse)
	}
	return sb.String(), nil
}

var _ models.AIProvider = (*Provider)(nil)
