package media

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Janitor removes temp files left behind by jobs that never released their
// workspace, e.g. after a crash.
type Janitor struct {
	dir      string
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewJanitor(dir string, maxAge, interval time.Duration) *Janitor {
	return &Janitor{dir: dir, maxAge: maxAge, interval: interval, now: time.Now}
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables periodic sweeping.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		slog.Warn("temp janitor disabled", "interval", j.interval)
		return
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := j.Sweep()
			if err != nil {
				slog.Warn("temp sweep failed", "dir", j.dir, "error", err)
			}
			if removed > 0 {
				slog.Info("temp sweep removed stale files", "dir", j.dir, "count", removed)
			}
		}
	}
}

// Sweep removes regular files older than maxAge and reports how many went.
func (j *Janitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	var errs []error
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
