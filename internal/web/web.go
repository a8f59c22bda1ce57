// Package web serves the browser-facing pages: a submit form and a results
// viewer rendered from stored reel results.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kiranshivaraju/reelinsight/internal/pipeline"
	"github.com/kiranshivaraju/reelinsight/internal/store"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

const (
	MsgEnterURL      = "Please enter a valid Instagram Reel URL"
	MsgProcessFailed = "Failed to process the reel. Please try again."
	MsgNoID          = "No analysis ID provided"
	MsgNotFound      = "Analysis not found or expired"
	MsgLoadFailed    = "Failed to load analysis results"
)

const videoPrefix = "data:video/mp4;base64,"

//go:embed templates/*.html
var templateFS embed.FS

// Service is the subset of the pipeline the pages need.
type Service interface {
	Process(ctx context.Context, url string) (string, error)
	Result(ctx context.Context, id string) (*models.ReelResult, error)
}

// Pages renders the HTML pages.
type Pages struct {
	svc  Service
	tmpl *template.Template
}

type indexData struct {
	PageTitle string
	URL       string
	Error     string
}

type resultsData struct {
	PageTitle string
	Result    *models.ReelResult
	Error     string
}

// NewPages parses the embedded templates.
func NewPages(svc Service) (*Pages, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"videoSrc":       videoSrc,
		"sentimentClass": sentimentClass,
		"sentimentEmoji": sentimentEmoji,
		"percent":        func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Pages{svc: svc, tmpl: tmpl}, nil
}

// Index renders the submit form.
func (p *Pages) Index(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusOK, "index.html", indexData{PageTitle: "Analyze"})
}

// Submit runs the pipeline for a form post and redirects to the results page.
func (p *Pages) Submit(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.FormValue("url"))
	if raw == "" {
		p.render(w, r, http.StatusBadRequest, "index.html", indexData{PageTitle: "Analyze", Error: MsgEnterURL})
		return
	}

	id, err := p.svc.Process(r.Context(), raw)
	if err != nil {
		data := indexData{PageTitle: "Analyze", URL: raw, Error: MsgProcessFailed}
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrInvalidURL) {
			data.Error = MsgEnterURL
			status = http.StatusBadRequest
		} else {
			slog.ErrorContext(r.Context(), "process reel failed", "url", raw, "error", err)
		}
		p.render(w, r, status, "index.html", data)
		return
	}

	http.Redirect(w, r, "/results?id="+url.QueryEscape(id), http.StatusSeeOther)
}

// Results renders a stored result.
func (p *Pages) Results(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		p.render(w, r, http.StatusBadRequest, "results.html", resultsData{PageTitle: "Results", Error: MsgNoID})
		return
	}

	result, err := p.svc.Result(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p.render(w, r, http.StatusNotFound, "results.html", resultsData{PageTitle: "Results", Error: MsgNotFound})
	case err != nil:
		slog.ErrorContext(r.Context(), "load result failed", "id", id, "error", err)
		p.render(w, r, http.StatusInternalServerError, "results.html", resultsData{PageTitle: "Results", Error: MsgLoadFailed})
	default:
		p.render(w, r, http.StatusOK, "results.html", resultsData{PageTitle: result.Title, Result: result})
	}
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf strings.Builder
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "render page failed", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

// videoSrc only trusts the data URI the pipeline produces.
func videoSrc(s string) template.URL {
	if !strings.HasPrefix(s, videoPrefix) || len(s) == len(videoPrefix) {
		return ""
	}
	return template.URL(s)
}

func sentimentClass(label string) string {
	switch label {
	case "very positive", "positive", "neutral", "negative", "very negative":
		return strings.ReplaceAll(label, " ", "-")
	default:
		return "neutral"
	}
}

func sentimentEmoji(label string) string {
	switch label {
	case "very positive":
		return "😄"
	case "positive":
		return "😊"
	case "negative":
		return "😔"
	case "very negative":
		return "😢"
	default:
		return "😐"
	}
}
