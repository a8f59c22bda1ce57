package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kiranshivaraju/reelinsight/internal/api/response"
	"github.com/kiranshivaraju/reelinsight/internal/media"
	"github.com/kiranshivaraju/reelinsight/internal/pipeline"
	"github.com/kiranshivaraju/reelinsight/internal/store"
	"github.com/kiranshivaraju/reelinsight/internal/transcribe"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

const (
	MsgURLRequired      = "Valid Instagram Reel URL is required"
	MsgInvalidURL       = "Please provide a valid Instagram Reel URL"
	MsgDownloadFailed   = "Failed to download Instagram Reel. Make sure the URL is correct and the reel is public."
	MsgTranscribeFailed = "Failed to transcribe audio. The video might not contain speech."
	MsgInternal         = "Internal server error"
	MsgIDRequired       = "ID parameter is required"
	MsgNotFound         = "Result not found"
)

const maxBodyBytes = 1 << 16

// ReelService defines the interface the reel handlers depend on.
type ReelService interface {
	Process(ctx context.Context, url string) (string, error)
	Result(ctx context.Context, id string) (*models.ReelResult, error)
	Status(ctx context.Context, id string) (string, error)
}

// SubmitResponse is returned by POST /api/process-reel.
type SubmitResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// StatusResponse is returned by GET /api/process-reel/status.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// NewSubmitHandler returns an http.HandlerFunc for POST /api/process-reel.
// The pipeline runs synchronously inside the request.
func NewSubmitHandler(svc ReelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL *string `json:"url"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil ||
			req.URL == nil || strings.TrimSpace(*req.URL) == "" {
			response.Error(w, http.StatusBadRequest, MsgURLRequired)
			return
		}

		id, err := svc.Process(r.Context(), *req.URL)
		if err != nil {
			status, msg := processError(err)
			if status >= 500 {
				slog.ErrorContext(r.Context(), "process reel failed", "url", *req.URL, "error", err)
			}
			response.Error(w, status, msg)
			return
		}

		response.OK(w, SubmitResponse{ID: id, Success: true})
	}
}

// processError maps a pipeline error to its status code and user-facing message.
func processError(err error) (int, string) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidURL):
		return http.StatusBadRequest, MsgInvalidURL
	case errors.Is(err, media.ErrDownload):
		return http.StatusInternalServerError, MsgDownloadFailed
	case errors.Is(err, transcribe.ErrTranscription):
		return http.StatusInternalServerError, MsgTranscribeFailed
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// NewGetResultHandler returns an http.HandlerFunc for GET /api/process-reel?id=.
func NewGetResultHandler(svc ReelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			response.Error(w, http.StatusBadRequest, MsgIDRequired)
			return
		}

		result, err := svc.Result(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, MsgNotFound)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "get result failed", "id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, MsgInternal)
			return
		}

		response.OK(w, result)
	}
}

// NewStatusHandler returns an http.HandlerFunc for GET /api/process-reel/status?id=.
func NewStatusHandler(svc ReelService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.URL.Query().Get("id"))
		if id == "" {
			response.Error(w, http.StatusBadRequest, MsgIDRequired)
			return
		}

		status, err := svc.Status(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, MsgNotFound)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "get status failed", "id", id, "error", err)
			response.Error(w, http.StatusInternalServerError, MsgInternal)
			return
		}

		response.OK(w, StatusResponse{ID: id, Status: status})
	}
}
