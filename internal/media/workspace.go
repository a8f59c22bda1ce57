package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const DefaultTitle = "Instagram Reel"

var videoExts = map[string]bool{".mp4": true, ".webm": true, ".mkv": true}

// Workspace is the set of temp files owned by one job. Every file the job
// creates is named with the job id as prefix.
type Workspace struct {
	dir string
	id  string
}

// NewWorkspace claims the id prefix inside dir, creating dir if needed.
func NewWorkspace(dir, id string) (*Workspace, error) {
	if id == "" {
		return nil, errors.New("workspace id is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Workspace{dir: dir, id: id}, nil
}

func (w *Workspace) ID() string  { return w.id }
func (w *Workspace) Dir() string { return w.dir }

// VideoTemplate is the downloader output template for this job.
func (w *Workspace) VideoTemplate() string {
	return filepath.Join(w.dir, w.id+"_%(title)s.%(ext)s")
}

func (w *Workspace) AudioPath() string {
	return filepath.Join(w.dir, w.id+"_audio.mp3")
}

// Files lists the paths currently owned by the job, sorted.
func (w *Workspace) Files() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read temp dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), w.id) {
			continue
		}
		out = append(out, filepath.Join(w.dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// FindVideo returns the downloaded video, if one exists.
func (w *Workspace) FindVideo() (string, bool, error) {
	files, err := w.Files()
	if err != nil {
		return "", false, err
	}
	for _, f := range files {
		if videoExts[strings.ToLower(filepath.Ext(f))] {
			return f, true, nil
		}
	}
	return "", false, nil
}

// Cleanup removes every file owned by the job.
func (w *Workspace) Cleanup() error {
	files, err := w.Files()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Release is Cleanup for deferred use. Failures are logged only.
func (w *Workspace) Release(ctx context.Context) {
	if err := w.Cleanup(); err != nil {
		slog.WarnContext(ctx, "temp cleanup failed", "job_id", w.id, "error", err)
	}
}

// TitleFromPath derives a display title from a downloaded file name by
// stripping the job id prefix and the extension.
func TitleFromPath(id, path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimPrefix(name, id+"_")
	name = strings.TrimSpace(name)
	if name == "" || name == id {
		return DefaultTitle
	}
	return name
}
