package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/kiranshivaraju/reelinsight/internal/config"
)

var (
	ErrDownload    = errors.New("media download failed")
	ErrToolMissing = errors.New("required media tool missing")
)

const maxOutputInError = 512

// Media is the set of artifacts produced for one reel.
type Media struct {
	VideoPath string
	AudioPath string
	Title     string
}

// Fetcher downloads a reel and extracts its audio track using the external
// downloader and transcoder binaries.
type Fetcher struct {
	cfg      config.MediaConfig
	runner   Runner
	lookPath func(string) (string, error)

	installOnce sync.Once
	installErr  error
}

func NewFetcher(cfg config.MediaConfig, runner Runner) *Fetcher {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Fetcher{cfg: cfg, runner: runner, lookPath: exec.LookPath}
}

// EnsureTools checks both binaries are available. A missing downloader
// triggers one install attempt per process.
func (f *Fetcher) EnsureTools(ctx context.Context) error {
	if _, err := f.lookPath(f.cfg.DownloaderBin); err != nil {
		f.installOnce.Do(func() { f.installErr = f.install(ctx) })
		if _, err := f.lookPath(f.cfg.DownloaderBin); err != nil {
			if f.installErr != nil {
				slog.ErrorContext(ctx, "downloader install failed", "error", f.installErr)
			}
			return fmt.Errorf("%w: %s is not installed; install it with %q", ErrToolMissing, f.cfg.DownloaderBin, f.cfg.DownloaderInstall)
		}
	}

	if _, err := f.lookPath(f.cfg.TranscoderBin); err != nil {
		return fmt.Errorf("%w: %s is not installed; install it with your package manager (brew install ffmpeg, apt install ffmpeg)", ErrToolMissing, f.cfg.TranscoderBin)
	}
	return nil
}

func (f *Fetcher) install(ctx context.Context) error {
	fields := strings.Fields(f.cfg.DownloaderInstall)
	if len(fields) == 0 {
		return errors.New("no install command configured")
	}
	slog.InfoContext(ctx, "installing downloader", "command", f.cfg.DownloaderInstall)
	out, err := f.runner.Run(ctx, fields[0], fields[1:]...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(out))
	}
	return nil
}

// Fetch downloads url into ws and extracts its audio. On failure every file
// the job created is removed before returning.
func (f *Fetcher) Fetch(ctx context.Context, ws *Workspace, url string) (m *Media, err error) {
	defer func() {
		if err != nil {
			ws.Release(ctx)
		}
	}()

	dctx, cancel := context.WithTimeout(ctx, f.cfg.DownloadTimeout)
	out, runErr := f.runner.Run(dctx, f.cfg.DownloaderBin, url, "-o", ws.VideoTemplate())
	cancel()

	video, found, err := ws.FindVideo()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	if !found {
		if runErr != nil {
			return nil, fmt.Errorf("%w: %w: %s", ErrDownload, runErr, tail(out))
		}
		return nil, fmt.Errorf("%w: downloader produced no video file", ErrDownload)
	}
	if runErr != nil {
		slog.WarnContext(ctx, "downloader exited with error but produced a video",
			"job_id", ws.ID(), "video", video, "error", runErr)
	}

	audio := ws.AudioPath()
	ectx, cancel := context.WithTimeout(ctx, f.cfg.ExtractTimeout)
	out, runErr = f.runner.Run(ectx, f.cfg.TranscoderBin, "-i", video, "-q:a", "0", "-map", "a", audio, "-y")
	cancel()
	if runErr != nil {
		return nil, fmt.Errorf("%w: extract audio: %w: %s", ErrDownload, runErr, tail(out))
	}
	if _, err := os.Stat(audio); err != nil {
		return nil, fmt.Errorf("%w: audio file missing after extraction: %w", ErrDownload, err)
	}

	return &Media{
		VideoPath: video,
		AudioPath: audio,
		Title:     TitleFromPath(ws.ID(), video),
	}, nil
}

func tail(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutputInError {
		s = s[len(s)-maxOutputInError:]
	}
	return s
}
