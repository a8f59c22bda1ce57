// Package transcribe converts speech audio to text through an
// OpenAI-compatible /audio/transcriptions endpoint.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"github.com/kiranshivaraju/reelinsight/internal/config"
)

var (
	ErrMissingCredential = errors.New("transcription api key not configured")
	ErrTranscription     = errors.New("transcription failed")
)

const maxErrorBody = 1024

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Client is safe for concurrent use. The underlying http.Client is built
// on first use unless one was supplied with WithHTTPClient.
type Client struct {
	cfg config.TranscribeConfig

	mu   sync.Mutex
	http *http.Client
}

func NewClient(cfg config.TranscribeConfig) *Client {
	return &Client{cfg: cfg}
}

// WithHTTPClient replaces the HTTP client used by later calls, mainly for
// tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.http = hc
	return c
}

func (c *Client) httpClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.http == nil {
		c.http = &http.Client{Timeout: c.cfg.Timeout}
	}
	return c.http
}

// Transcribe uploads audio and returns the recognised text. Every failure
// wraps ErrTranscription; there are no retries.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("%w: %w", ErrTranscription, ErrMissingCredential)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: build form: %w", ErrTranscription, err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("%w: read audio: %w", ErrTranscription, err)
	}
	fields := map[string]string{
		"model":           c.cfg.Model,
		"language":        c.cfg.Language,
		"response_format": "json",
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("%w: build form: %w", ErrTranscription, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: build form: %w", ErrTranscription, err)
	}

	endpoint := fmt.Sprintf("%s/audio/transcriptions", strings.TrimRight(c.cfg.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %w", ErrTranscription, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranscription, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: status %d: %s", ErrTranscription, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrTranscription, err)
	}
	return out.Text, nil
}
