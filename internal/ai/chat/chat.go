// Package chat holds the error classification and HTTP plumbing shared by
// the language model providers.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

const (
	DefaultHTTPTimeout = 2 * time.Minute
	maxErrorBody       = 1024
)

// Message is one turn in a chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewHTTPClient returns the client providers use when none is injected.
// Per-call deadlines come from the request context.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// PostJSON sends in as a JSON body to url and decodes the response into out.
// Failures are classified into the package sentinels.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Classify(ctx, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", statusError(resp.StatusCode), resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrInvalidResponse, err)
	}
	return nil
}

// Classify maps a transport error to ErrInferenceTimeout or ErrProviderUnavailable.
func Classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrInferenceTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrInferenceTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}

func statusError(code int) error {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout:
		return ErrInferenceTimeout
	case code >= 500, code == http.StatusTooManyRequests,
		code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrProviderUnavailable
	default:
		return ErrInvalidResponse
	}
}
