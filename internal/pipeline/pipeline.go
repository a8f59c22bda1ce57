// Package pipeline runs one reel through download, transcription and
// analysis and stores the assembled result.
package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/reelinsight/internal/analysis"
	"github.com/kiranshivaraju/reelinsight/internal/cache"
	"github.com/kiranshivaraju/reelinsight/internal/media"
	"github.com/kiranshivaraju/reelinsight/internal/store"
	"github.com/kiranshivaraju/reelinsight/internal/transcribe"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

var (
	ErrInvalidURL = errors.New("invalid instagram reel url")
	ErrStore      = errors.New("failed to store result")
)

const (
	statusTTL       = 30 * time.Minute
	videoDataPrefix = "data:video/mp4;base64,"
)

// ValidateURL accepts any URL mentioning both the instagram.com host and a
// reel path marker.
func ValidateURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	if !strings.Contains(url, "instagram.com") || !strings.Contains(url, "reel") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}
	return nil
}

// Fetcher is the media side of the pipeline.
type Fetcher interface {
	EnsureTools(ctx context.Context) error
	Fetch(ctx context.Context, ws *media.Workspace, url string) (*media.Media, error)
}

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Analyzer produces a content analysis. It never fails.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) analysis.Outcome
}

// Service orchestrates a full pipeline run. Each call to Process is
// independent; concurrent runs share only the store and cache.
type Service struct {
	tempDir     string
	fetcher     Fetcher
	transcriber Transcriber
	analyzer    Analyzer
	store       store.ResultStore
	cache       cache.Cache
	now         func() time.Time
	newID       func() string
}

func NewService(tempDir string, f Fetcher, t Transcriber, a Analyzer, st store.ResultStore, ca cache.Cache) *Service {
	return &Service{
		tempDir:     tempDir,
		fetcher:     f,
		transcriber: t,
		analyzer:    a,
		store:       st,
		cache:       ca,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Process runs the pipeline for url and returns the id of the stored result.
// Temp files are removed before it returns, whatever the outcome.
func (s *Service) Process(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if err := ValidateURL(url); err != nil {
		return "", err
	}

	id := s.newID()
	log := slog.With("job_id", id)
	start := s.now()

	ws, err := media.NewWorkspace(s.tempDir, id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", media.ErrDownload, err)
	}
	defer ws.Release(ctx)

	s.setStatus(ctx, id, models.JobStatusCreated)
	log.InfoContext(ctx, "processing reel", "url", url)

	s.setStatus(ctx, id, models.JobStatusDownloading)
	m, err := s.download(ctx, ws, url)
	if err != nil {
		s.fail(ctx, id, "download", err)
		return "", err
	}
	log.InfoContext(ctx, "download completed", "step", "download", "title", m.Title)

	s.setStatus(ctx, id, models.JobStatusTranscribing)
	transcript, err := s.transcribeAudio(ctx, m.AudioPath)
	if err != nil {
		s.fail(ctx, id, "transcribe", err)
		return "", err
	}
	log.InfoContext(ctx, "transcription completed", "step", "transcribe", "chars", len(transcript))

	s.setStatus(ctx, id, models.JobStatusAnalyzing)
	outcome := s.analyzer.Analyze(ctx, transcript)
	if outcome.Degraded() {
		log.WarnContext(ctx, "analysis degraded to fallback", "step", "analyze", "reason", outcome.Reason)
	} else {
		log.InfoContext(ctx, "analysis completed", "step", "analyze", "category", outcome.Analysis.Category)
	}

	s.setStatus(ctx, id, models.JobStatusPackaging)
	video, err := encodeVideo(m.VideoPath)
	if err != nil {
		log.WarnContext(ctx, "video could not be packaged", "step", "package", "error", err)
	}

	result := &models.ReelResult{
		ID:             id,
		URL:            url,
		Title:          m.Title,
		Transcript:     transcript,
		Analysis:       outcome.Analysis,
		AnalysisSource: outcome.Source,
		VideoBase64:    video,
		ProcessedAt:    s.now().UTC(),
	}
	if err := s.store.Put(ctx, result); err != nil {
		err = fmt.Errorf("%w: %w", ErrStore, err)
		s.fail(ctx, id, "store", err)
		return "", err
	}

	s.setStatus(ctx, id, models.JobStatusStored)
	log.InfoContext(ctx, "processing completed", "duration_ms", s.now().Sub(start).Milliseconds())
	return id, nil
}

func (s *Service) download(ctx context.Context, ws *media.Workspace, url string) (*media.Media, error) {
	if err := s.fetcher.EnsureTools(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", media.ErrDownload, err)
	}
	m, err := s.fetcher.Fetch(ctx, ws, url)
	if err != nil {
		if !errors.Is(err, media.ErrDownload) {
			err = fmt.Errorf("%w: %w", media.ErrDownload, err)
		}
		return nil, err
	}
	return m, nil
}

func (s *Service) transcribeAudio(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("%w: open audio: %w", transcribe.ErrTranscription, err)
	}
	defer f.Close()

	text, err := s.transcriber.Transcribe(ctx, filepath.Base(audioPath), f)
	if err != nil {
		if !errors.Is(err, transcribe.ErrTranscription) {
			err = fmt.Errorf("%w: %w", transcribe.ErrTranscription, err)
		}
		return "", err
	}
	return text, nil
}

// Result returns the stored result for id.
func (s *Service) Result(ctx context.Context, id string) (*models.ReelResult, error) {
	return s.store.Get(ctx, id)
}

// Status returns the last recorded job status for id. Stored results whose
// status has expired from the cache report JobStatusStored.
func (s *Service) Status(ctx context.Context, id string) (string, error) {
	if s.cache != nil {
		status, found, err := s.cache.GetJobStatus(ctx, id)
		if err != nil {
			return "", fmt.Errorf("get job status: %w", err)
		}
		if found {
			return status, nil
		}
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return "", err
	}
	return models.JobStatusStored, nil
}

func (s *Service) setStatus(ctx context.Context, id, status string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJobStatus(ctx, id, status, statusTTL); err != nil {
		slog.WarnContext(ctx, "failed to record job status", "job_id", id, "status", status, "error", err)
	}
}

func (s *Service) fail(ctx context.Context, id, step string, err error) {
	slog.ErrorContext(ctx, "processing failed", "job_id", id, "step", step, "error", err)
	s.setStatus(ctx, id, models.JobStatusFailed)
}

func encodeVideo(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return videoDataPrefix + base64.StdEncoding.EncodeToString(data), nil
}
