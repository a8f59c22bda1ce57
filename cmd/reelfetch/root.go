package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kiranshivaraju/reelinsight/internal/app"
	"github.com/kiranshivaraju/reelinsight/internal/config"
	"github.com/kiranshivaraju/reelinsight/internal/report"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
	"github.com/spf13/cobra"
)

var errNoLinks = errors.New("no valid links provided")

type options struct {
	linksFile string
	outDir    string
	xlsxPath  string
	quiet     bool
}

// Processor runs one link through the pipeline.
type Processor interface {
	Process(ctx context.Context, url string) (string, error)
	Result(ctx context.Context, id string) (*models.ReelResult, error)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reelfetch [reel-url...]",
		Short: "Transcribe and analyze a batch of Instagram Reels",
		Long: `reelfetch runs each link through download, transcription and analysis.

Links come from the arguments and from --links (one per line). Transcripts
are written to --out as "<title> - <id>.txt" together with
compiled_transcripts.txt and, when some links fail, failed_links.txt.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.linksFile, "links", "l", "", "File with one reel URL per line")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "reels", "Output directory for transcripts")
	cmd.Flags().StringVar(&opts.xlsxPath, "report", "", "Write an xlsx summary to this path")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only log warnings and errors")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *options, args []string) error {
	links, err := collectLinks(args, opts.linksFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.Server.LogLevel
	if opts.quiet {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return runBatch(ctx, a.Service, links, opts, cmd.OutOrStdout())
}

// runBatch processes links sequentially and writes the outputs.
func runBatch(ctx context.Context, p Processor, links []string, opts *options, out io.Writer) error {
	w, err := report.NewWriter(opts.outDir)
	if err != nil {
		return err
	}

	entries := make([]report.Entry, 0, len(links))
	failed := 0
	for i, link := range links {
		if ctx.Err() != nil {
			break
		}
		e := processLink(ctx, p, link)
		status := "ok"
		if e.Err != nil {
			failed++
			status = "failed: " + e.Err.Error()
		}
		fmt.Fprintf(out, "[%d/%d] %s %s\n", i+1, len(links), link, status)
		entries = append(entries, e)
	}

	if err := w.WriteAll(entries); err != nil {
		return err
	}
	if opts.xlsxPath != "" {
		if err := report.WriteXLSX(opts.xlsxPath, entries); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", opts.xlsxPath)
	}

	fmt.Fprintf(out, "Processed %d reel(s), %d failed. Transcripts in %s\n", len(entries)-failed, failed, w.Dir())
	if failed > 0 {
		fmt.Fprintf(out, "Failed links saved to %s\n", report.FailedFile)
	}
	return ctx.Err()
}

func processLink(ctx context.Context, p Processor, link string) report.Entry {
	id, err := p.Process(ctx, link)
	if err != nil {
		return report.Entry{URL: link, Err: err}
	}
	result, err := p.Result(ctx, id)
	if err != nil {
		return report.Entry{URL: link, Err: fmt.Errorf("load result %s: %w", id, err)}
	}
	return report.Entry{URL: link, Result: result}
}

// collectLinks merges argument links with the lines of path. Only entries
// starting with "http" are kept.
func collectLinks(args []string, path string) ([]string, error) {
	var links []string
	add := func(s string) {
		if s = strings.TrimSpace(s); strings.HasPrefix(s, "http") {
			links = append(links, s)
		}
	}
	for _, a := range args {
		add(a)
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open links file: %w", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			add(sc.Text())
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read links file: %w", err)
		}
	}

	if len(links) == 0 {
		return nil, errNoLinks
	}
	return links, nil
}
