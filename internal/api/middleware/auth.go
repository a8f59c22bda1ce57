package middleware

import (
	"net/http"
	"strings"

	"github.com/kiranshivaraju/reelinsight/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

const keyPrefixLen = 8

// Auth checks bearer tokens against a fixed set of bcrypt hashes. With no
// hashes configured every request passes.
type Auth struct {
	hashes [][]byte
}

// NewAuth creates a new Auth middleware.
func NewAuth(hashes []string) *Auth {
	a := &Auth{}
	for _, h := range hashes {
		if h = strings.TrimSpace(h); h != "" {
			a.hashes = append(a.hashes, []byte(h))
		}
	}
	return a
}

// Enabled reports whether any key hashes are configured.
func (a *Auth) Enabled() bool { return len(a.hashes) > 0 }

// Authenticate validates the Bearer token and records its prefix in the
// request context for rate limiting.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}
		if len(rawKey) < keyPrefixLen {
			response.Error(w, http.StatusUnauthorized, "Invalid API key format")
			return
		}

		for _, h := range a.hashes {
			if bcrypt.CompareHashAndPassword(h, []byte(rawKey)) == nil {
				r = r.WithContext(setKeyPrefix(r.Context(), rawKey[:keyPrefixLen]))
				next.ServeHTTP(w, r)
				return
			}
		}

		response.Error(w, http.StatusUnauthorized, "Invalid API key")
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
