package vllm

import (
	"strings"

	"github.com/kiranshivaraju/reelinsight/internal/ai/openai"
	"github.com/kiranshivaraju/reelinsight/internal/config"
)

// NewProvider returns a provider for a vLLM server. vLLM serves the OpenAI
// chat completions API under /v1 and needs no key.
func NewProvider(cfg config.VLLMConfig) *openai.Provider {
	return openai.NewCompatible("vllm", strings.TrimRight(cfg.BaseURL, "/")+"/v1", "", cfg.Model)
}
