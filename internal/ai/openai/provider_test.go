package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/reelinsight/internal/ai"
	"github.com/kiranshivaraju/reelinsight/internal/ai/openai"
	"github.com/kiranshivaraju/reelinsight/internal/config"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-3.5-turbo", body["model"])
		assert.InDelta(t, 0.1, body["temperature"], 0.0001)
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		msgs, _ := body["messages"].([]any)
		if !assert.Len(t, msgs, 2) {
			return
		}
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.Equal(t, "You are an analyst.", msgs[0].(map[string]any)["content"])
		assert.Equal(t, "user", msgs[1].(map[string]any)["role"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	p := openai.NewProvider(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-3.5-turbo"})
	out, err := p.Complete(context.Background(), models.CompletionRequest{
		System: "You are an analyst.", Prompt: "hi", Temperature: 0.1, JSON: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, "openai", p.Name())
}

func TestComplete_NoSystemNoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "response_format")
		assert.Len(t, body["messages"], 1)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"plain"}}]}`))
	}))
	defer srv.Close()

	p := openai.NewCompatible("local", srv.URL, "", "m")
	out, err := p.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
	assert.Equal(t, "local", p.Name())
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := openai.NewCompatible("openai", srv.URL, "k", "m").Complete(context.Background(), models.CompletionRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ai.ErrInvalidResponse)
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := openai.NewCompatible("openai", srv.URL, "k", "m").WithHTTPClient(srv.Client()).
		Complete(context.Background(), models.CompletionRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "openai")
}
