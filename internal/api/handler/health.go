package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/reelinsight/internal/api/response"
)

// Pinger is any dependency the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler reports "ok" per named dependency, or 503 if any is down.
// Nil dependencies are skipped.
func NewHealthHandler(deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]string, len(deps))
		degraded := false
		for name, p := range deps {
			if p == nil {
				continue
			}
			checks[name] = "ok"
			if err := p.Ping(r.Context()); err != nil {
				checks[name] = "degraded"
				degraded = true
			}
		}

		body := map[string]any{"status": "ok", "services": checks}
		if degraded {
			body["status"] = "degraded"
			response.JSON(w, http.StatusServiceUnavailable, body)
			return
		}
		response.OK(w, body)
	}
}
