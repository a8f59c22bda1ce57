package middleware

import (
	"context"
	"net/http"
)

// apiKeyPrefixKey carries the first characters of the authenticated API key.
type apiKeyPrefixKey struct{}

func setKeyPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, apiKeyPrefixKey{}, prefix)
}

// GetKeyPrefix returns the prefix of the API key that authenticated r. It
// reports false for unauthenticated requests, including all requests when
// auth is disabled.
func GetKeyPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(apiKeyPrefixKey{}).(string)
	return prefix, ok && prefix != ""
}
