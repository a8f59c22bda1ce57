// Package ai selects the language model provider used for content analysis.
package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kiranshivaraju/reelinsight/internal/ai/anthropic"
	"github.com/kiranshivaraju/reelinsight/internal/ai/ollama"
	"github.com/kiranshivaraju/reelinsight/internal/ai/openai"
	"github.com/kiranshivaraju/reelinsight/internal/ai/vllm"
	"github.com/kiranshivaraju/reelinsight/internal/config"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

var constructors = map[string]func(config.AIConfig) models.AIProvider{
	"openai":    func(c config.AIConfig) models.AIProvider { return openai.NewProvider(c.OpenAI) },
	"vllm":      func(c config.AIConfig) models.AIProvider { return vllm.NewProvider(c.VLLM) },
	"ollama":    func(c config.AIConfig) models.AIProvider { return ollama.NewProvider(c.Ollama) },
	"anthropic": func(c config.AIConfig) models.AIProvider { return anthropic.NewProvider(c.Anthropic) },
}

// NewProvider builds the provider named by cfg.Provider.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	build, ok := constructors[cfg.Provider]
	if !ok {
		names := make([]string, 0, len(constructors))
		for name := range constructors {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown AI provider %q: must be one of %s", cfg.Provider, strings.Join(names, ", "))
	}
	return build(cfg), nil
}
