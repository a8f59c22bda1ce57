package ollama

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
	Model    string         `json:"model"`
	Messages []chat.Message `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  chatOptions    `json:"options"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message chat.Message `json:"message"`
	Done    bool         `json:"done"`
}

// Provider implements models.AIProvider using a local Ollama server.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, client: chat.NewHTTPClient()}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func (p *Provider) WithHTTPClient(c *http.Client) *Provider {
	p.client = c
	return p
}

func (p *Provider) Name() string { return "ollama" }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	payload := chatRequest{
		Model:   p.cfg.Model,
		Stream:  false,
		Options: chatOptions{Temperature: req.Temperature},
	}
	if req.System != "" {
		payload.Messages = append(payload.Messages, chat.Message{Role: "system", Content: req.System})
	}
	payload.Messages = append(payload.Messages, chat.Message{Role: "user", Content: req.Prompt})
	if req.JSON {
		payload.Format = "json"
	}

	var out chatResponse
	if err := chat.PostJSON(ctx, p.client, p.cfg.BaseURL+"/api/chat", nil, payload, &out); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	return out.Message.Content, nil
}

var _ models.AIProvider = (*Provider)(nil)
