// Package report writes the batch outputs of reelfetch: one transcript file
// per reel, a compiled transcript, the list of failed links and an optional
// spreadsheet summary.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

const (
	CompiledFile = "compiled_transcripts.txt"
	FailedFile   = "failed_links.txt"

	maxTitleLen = 100
)

// Entry is the outcome of processing one link.
type Entry struct {
	URL    string
	Result *models.ReelResult
	Err    error
}

// Writer writes transcript files into a single output directory.
type Writer struct {
	dir string
}

// NewWriter creates dir if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

func (w *Writer) Dir() string { return w.dir }

// TranscriptName returns "<title> - <id>.txt" with unsafe characters replaced.
func TranscriptName(r *models.ReelResult) string {
	title := sanitize(r.Title)
	if title == "" {
		title = "reel"
	}
	return fmt.Sprintf("%s - %s.txt", title, r.ID)
}

// WriteTranscript writes the transcript of r and returns the file path.
func (w *Writer) WriteTranscript(r *models.ReelResult) (string, error) {
	path := filepath.Join(w.dir, TranscriptName(r))
	if err := os.WriteFile(path, []byte(r.Transcript), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// Compile concatenates every transcript in the directory, in name order,
// into CompiledFile. Each transcript is preceded by a "--- <name> ---" header.
func (w *Writer) Compile() (string, int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return "", 0, fmt.Errorf("read output dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".txt") || name == CompiledFile || name == FailedFile {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(w.dir, name))
		if err != nil {
			return "", 0, fmt.Errorf("read %s: %w", name, err)
		}
		fmt.Fprintf(&b, "\n\n--- %s ---\n", name)
		b.Write(data)
	}

	path := filepath.Join(w.dir, CompiledFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", 0, fmt.Errorf("write compiled transcripts: %w", err)
	}
	return path, len(names), nil
}

// WriteFailed writes one url per line to FailedFile. Nothing is written when
// urls is empty.
func (w *Writer) WriteFailed(urls []string) (string, error) {
	if len(urls) == 0 {
		return "", nil
	}
	path := filepath.Join(w.dir, FailedFile)
	if err := os.WriteFile(path, []byte(strings.Join(urls, "\n")), 0o644); err != nil {
		return "", fmt.Errorf("write failed links: %w", err)
	}
	return path, nil
}

// WriteAll writes transcripts for the successful entries, the failed link
// list and the compiled transcript.
func (w *Writer) WriteAll(entries []Entry) error {
	var failed []string
	var errs []error
	for _, e := range entries {
		if e.Err != nil || e.Result == nil {
			failed = append(failed, e.URL)
			continue
		}
		if _, err := w.WriteTranscript(e.Result); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := w.WriteFailed(failed); err != nil {
		errs = append(errs, err)
	}
	if _, _, err := w.Compile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	for utf8.RuneCountInString(s) > maxTitleLen {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return strings.TrimSpace(s)
}
