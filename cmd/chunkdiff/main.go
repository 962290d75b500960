package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ncruces/go-strftime"

	"github.com/pstuifzand/chunkview/internal/config"
	"github.com/pstuifzand/chunkview/internal/diff"
	"github.com/pstuifzand/chunkview/internal/storage"
)

type options struct {
	verbose     bool
	summary     bool
	jsonOut     bool
	debug       bool
	granularity string
	now         time.Time
}

func main() {
	verbose := flag.Bool("v", false, "Verbose output (show text edits and sub-changes)")
	summary := flag.Bool("s", false, "Summary only (no element-level details)")
	jsonOut := flag.Bool("json", false, "Write the widget JSON payloads instead of text")
	debug := flag.Bool("debug", false, "Dump the raw diff trees to stderr")
	granularity := flag.String("g", "", "Text edit granularity: char, word or line")
	configPath := flag.String("config", "", "Config file (default ~/.config/chunkview/config.toml)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: chunkdiff [options] <before.json> <after.json>

Compares two chunked documents: the element trees (structural diff) and the
flat rendered chunk sequences (rendered diff).

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Compare two versions
  chunkdiff v1.json v2.json

  # Word-level text edits with details
  chunkdiff -v -g word v1.json v2.json

  # Machine readable output
  chunkdiff -json v1.json v2.json | jq .rendered.stats
`)
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := options{
		verbose:     *verbose,
		summary:     *summary,
		jsonOut:     *jsonOut,
		debug:       *debug,
		granularity: *granularity,
		now:         time.Now(),
	}
	if err := run(os.Stdout, os.Stderr, cfg, args[0], args[1], opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}

func run(stdout, stderr io.Writer, cfg *config.Config, beforePath, afterPath string, opts options) error {
	before, err := storage.NewJSONStore(beforePath).Load()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", beforePath, err)
	}
	after, err := storage.NewJSONStore(afterPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", afterPath, err)
	}

	if opts.granularity != "" {
		cfg.Set("diff.granularity", opts.granularity)
	}
	report := diff.DiffDocuments(before, after, cfg.DiffOptions())

	if opts.debug {
		spew.Fdump(stderr, report.Structural.Root, report.Rendered.Operations)
	}

	if opts.jsonOut {
		return writeJSON(stdout, report)
	}
	writeText(stdout, report, beforePath, afterPath, cfg.Report.TimestampFormat, opts)
	return nil
}

type widgetPayload struct {
	Structural *diff.StructuralWidget `json:"structural"`
	Rendered   *diff.RenderedWidget   `json:"rendered"`
	ChunkChurn float64                `json:"chunk_churn"`
}

func writeJSON(w io.Writer, report *diff.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	payload := widgetPayload{
		Structural: report.Structural.WidgetData(),
		Rendered:   report.Rendered.WidgetData(),
		ChunkChurn: report.ChunkChurn,
	}
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func writeText(w io.Writer, report *diff.Report, beforePath, afterPath, timestampFormat string, opts options) {
	fmt.Fprintf(w, "=== Chunk Diff: %s → %s ===\n", beforePath, afterPath)
	if timestampFormat != "" {
		fmt.Fprintf(w, "Generated %s\n", strftime.Format(timestampFormat, opts.now))
	}
	fmt.Fprintln(w)

	if !opts.summary {
		if !report.HasChanges() {
			fmt.Fprintln(w, "No changes detected")
		} else {
			printLines(w, diff.BuildStructuralLines(report.Structural, opts.verbose))
			fmt.Fprintln(w)
			printLines(w, diff.BuildRenderedLines(report.Rendered, opts.verbose))
		}
		fmt.Fprintln(w)
	}

	s := report.Structural.Stats
	m := report.Structural.Metrics
	r := report.Rendered.Stats
	fmt.Fprintln(w, "=== Summary ===")
	fmt.Fprintf(w, "  %d elements modified\n", s.NodesModified)
	fmt.Fprintf(w, "  %d elements added\n", s.NodesAdded)
	fmt.Fprintf(w, "  %d elements deleted\n", s.NodesRemoved)
	fmt.Fprintf(w, "  %d elements moved\n", s.NodesMoved)
	fmt.Fprintf(w, "  %d chunks inserted, %d deleted, %d replaced\n", r.Inserted, r.Deleted, r.Replaced)
	fmt.Fprintf(w, "  text +%d -%d\n", s.TextAdded, s.TextRemoved)
	fmt.Fprintf(w, "  change density %.1f%%, text churn %.1f%%, chunk churn %.1f%%\n",
		m.ChangeDensity*100, m.TextChurn*100, report.ChunkChurn*100)
}

func printLines(w io.Writer, lines []diff.DiffLine) {
	for _, line := range lines {
		if line.Type == diff.DiffTypeBlank {
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", line.Indent), line.Content)
	}
}
