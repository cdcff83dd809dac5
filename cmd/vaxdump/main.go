// Command vaxdump downloads the dataset once and writes charts for one or more
// locations as JSON, SVG or HTML.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/vaxchart/internal/chart"
	"github.com/rickgao/vaxchart/internal/config"
	"github.com/rickgao/vaxchart/internal/dataset"
	"github.com/rickgao/vaxchart/internal/logging"
	"github.com/rickgao/vaxchart/internal/model"
	"github.com/rickgao/vaxchart/internal/render"
	"github.com/rickgao/vaxchart/internal/source"
	"github.com/rickgao/vaxchart/internal/version"
)

func main() {
	url := flag.String("url", config.DefaultSourceURL, "dataset URL")
	file := flag.String("file", "", "read the dataset from a local CSV instead of -url")
	locations := flag.String("location", config.DefaultLocation, "comma-separated locations, or \"all\"")
	format := flag.String("format", "json", "output format: json, svg or html")
	out := flag.String("out", "-", "output directory, or - for stdout (single location only)")
	width := flag.Int("width", config.DefaultChartWidth, "chart width in pixels")
	height := flag.Int("height", config.DefaultChartHeight, "chart height in pixels")
	strict := flag.Bool("strict", false, "fail on the first malformed row")
	list := flag.Bool("list", false, "print locations and exit")
	concurrency := flag.Int("concurrency", 4, "charts rendered in parallel")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := logging.New(*logLevel, "text")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	opts := source.ParseOptions{Strict: *strict}
	res, err := load(ctx, *url, *file, opts, logger)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded", "rows", len(res.Records), "skipped", res.Skipped)

	snap := dataset.NewSnapshot(res.Records, time.Now())
	if *list {
		for _, loc := range snap.Locations() {
			fmt.Println(loc)
		}
		return
	}

	selected := snap.Locations()
	if *locations != "all" {
		selected = splitList(*locations)
	}
	if *out == "-" && len(selected) != 1 {
		logger.Error("stdout output needs exactly one location; use -out DIR", "locations", len(selected))
		os.Exit(1)
	}

	d := dumper{
		snap:   snap,
		charts: chart.NewService(fixedSnapshot{snap}, nil, nil, logger),
		format: *format,
		opts:   render.DefaultOptions(*width, *height),
	}

	if *out == "-" {
		if err := d.write(ctx, os.Stdout, selected[0]); err != nil {
			logger.Error("failed to write chart", "location", selected[0], "error", err)
			os.Exit(1)
		}
		return
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*concurrency)
	for _, loc := range selected {
		g.Go(func() error {
			path := filepath.Join(*out, fileName(loc, *format))
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := d.write(gctx, f, loc); err != nil {
				f.Close()
				return fmt.Errorf("%s: %w", loc, err)
			}
			logger.Debug("chart written", "location", loc, "path", path)
			return f.Close()
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("failed to write charts", "error", err)
		os.Exit(1)
	}
	logger.Info("charts written", "count", len(selected), "dir", *out)
}

func load(ctx context.Context, url, file string, opts source.ParseOptions, logger *slog.Logger) (*source.ParseResult, error) {
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return source.Parse(f, opts)
	}
	client := source.NewClient(url,
		source.WithLogger(logger),
		source.WithUserAgent(version.UserAgent()),
		source.WithParseOptions(opts),
	)
	return client.Fetch(ctx)
}

// fixedSnapshot serves one snapshot to the chart service.
type fixedSnapshot struct {
	snap *dataset.Snapshot
}

func (f fixedSnapshot) Snapshot() *dataset.Snapshot { return f.snap }

type dumper struct {
	snap   *dataset.Snapshot
	charts *chart.Service
	format string
	opts   render.Options
}

func (d dumper) write(ctx context.Context, w io.Writer, location string) error {
	c, err := d.charts.ForLocation(ctx, location)
	if err != nil {
		return err
	}

	switch d.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case "svg":
		return render.SVG(w, d.layout(c))
	case "html":
		return render.Page(w, render.PageData{
			Locations: []string{location},
			Selected:  location,
			LoadID:    c.LoadID,
			LoadedAt:  d.snap.LoadedAt,
			Layout:    d.layout(c),
		})
	default:
		return fmt.Errorf("unknown format %q", d.format)
	}
}

func (d dumper) layout(c *model.Chart) *render.Layout {
	return render.Compute(c, d.snap.Vaccines(), d.opts)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// fileName builds a filesystem-safe name for a location's chart.
func fileName(location, format string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, location)
	return name + "." + format
}
