package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/panbanda/callflow/internal/cache"
	"github.com/panbanda/callflow/internal/output"
	"github.com/panbanda/callflow/internal/progress"
	"github.com/panbanda/callflow/internal/scanner"
	"github.com/panbanda/callflow/pkg/analyzer/flow"
	"github.com/panbanda/callflow/pkg/callgraph"
	"github.com/panbanda/callflow/pkg/config"
	"github.com/urfave/cli/v2"
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig honors the global --config flag, falling back to the standard
// search locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// collectFiles scans the given paths for analyzable sources and applies the
// configured size limit.
func collectFiles(cfg *config.Config, paths []string) ([]string, error) {
	scan := scanner.New(cfg)

	var files []string
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path %s: %w", path, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, absPath)
			continue
		}

		found, err := scan.ScanDir(absPath)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		files = append(files, found...)
	}

	filtered, skipped := scanner.FilterBySize(files, cfg.Analysis.MaxFileSize)
	if skipped > 0 {
		color.Yellow("Skipped %d oversized or unreadable files", skipped)
	}
	return filtered, nil
}

// newAnalyzer wires an analyzer from the config and the global --no-cache
// flag.
func newAnalyzer(c *cli.Context, cfg *config.Config) (*flow.Analyzer, error) {
	opts := []flow.Option{flow.WithWorkers(cfg.Analysis.Workers)}

	if cfg.Cache.Enabled && !c.Bool("no-cache") {
		store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		opts = append(opts, flow.WithCache(store))
	}

	return flow.New(opts...), nil
}

// intSetting resolves a numeric option: an explicitly passed flag wins,
// otherwise the configured value applies.
func intSetting(c *cli.Context, name string, configured int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	return configured
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// buildGraph runs the full pipeline for a command: config, scan, analyze.
func buildGraph(c *cli.Context) (*callgraph.Graph, *flow.Report, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}

	files, err := collectFiles(cfg, getPaths(c))
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		color.Yellow("No source files found")
		return callgraph.New(), &flow.Report{}, nil
	}

	a, err := newAnalyzer(c, cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := signalContext()
	defer cancel()

	tracker := newAnalysisTracker(c, len(files))
	graph, report, err := a.AnalyzeProject(ctx, files, tracker.Tick)
	tracker.Finish()
	if err != nil {
		return nil, nil, fmt.Errorf("analysis failed: %w", err)
	}

	if c.Bool("verbose") {
		reportIssues(report)
	}
	return graph, report, nil
}

// newAnalysisTracker creates the per-file progress bar. Structured output
// on stdout stays clean; the bar itself writes to stderr.
func newAnalysisTracker(c *cli.Context, total int) *progress.Tracker {
	format := output.ParseFormat(c.String("format"))
	enabled := format == output.FormatText || format == output.FormatMarkdown || c.String("output") != ""
	return progress.NewTracker(total, "Analyzing call graph...", enabled)
}

// loadSnapshot reads a previously saved graph from a JSON snapshot file.
func loadSnapshot(path string) (*callgraph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap callgraph.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}

	graph, err := callgraph.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot %s: %w", path, err)
	}
	return graph, nil
}

// resolveGraph either loads a snapshot (--load) or analyzes the paths.
func resolveGraph(c *cli.Context) (*callgraph.Graph, *flow.Report, error) {
	if path := c.String("load"); path != "" {
		graph, err := loadSnapshot(path)
		return graph, nil, err
	}
	return buildGraph(c)
}

func reportIssues(report *flow.Report) {
	if report == nil || len(report.Issues) == 0 {
		return
	}
	color.Yellow("Parse issues (%d):", len(report.Issues))
	for _, issue := range report.Issues {
		fmt.Fprintf(os.Stderr, "  - %s: %s\n", issue.File, issue.Reason)
	}
}

// displayName renders a node the way a human refers to it: Class.name or
// name, with the file:line location.
func displayName(def callgraph.Definition) string {
	name := def.Name
	if def.EnclosingClass != "" {
		name = def.EnclosingClass + "." + name
	}
	return name
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// matchNodes returns IDs whose node matches arg, either exactly by ID or by
// simple name (Class.name also accepted).
func matchNodes(graph *callgraph.Graph, arg string) []string {
	if graph.HasNode(arg) {
		return []string{arg}
	}

	var ids []string
	for _, id := range graph.NodeIDs() {
		def, _ := graph.Node(id)
		if def.Name == arg || displayName(def) == arg {
			ids = append(ids, id)
		}
	}
	return ids
}

// shortLocation trims a path to its last two segments for table display.
func shortLocation(file string, line uint32) string {
	parts := strings.Split(file, string(filepath.Separator))
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return fmt.Sprintf("%s:%d", strings.Join(parts, string(filepath.Separator)), line)
}
