// Package flow builds function call graphs from source trees. Extraction
// runs per file with no cross-file state; resolution runs once over the
// complete definition set behind a barrier, then the graph is assembled
// nodes-first.
package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/panbanda/callflow/internal/cache"
	"github.com/panbanda/callflow/internal/fileproc"
	"github.com/panbanda/callflow/pkg/callgraph"
	"github.com/panbanda/callflow/pkg/parser"
)

// DefaultWorkers bounds Phase-1 parallelism when nothing is configured.
const DefaultWorkers = 4

// Analyzer coordinates multi-file call-graph analysis.
type Analyzer struct {
	workers int
	cache   *cache.Cache
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWorkers sets the Phase-1 worker count (<= 0 uses DefaultWorkers).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithCache sets the per-file extraction cache. Without it, every run
// extracts from scratch.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.cache = c
		}
	}
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		workers: DefaultWorkers,
		cache:   cache.Disabled(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Source is one vetted input: a path plus its text. The analyzer trusts the
// list it receives; path and size vetting happen upstream.
type Source struct {
	Path string
	Text []byte
}

// Report aggregates per-run accounting returned alongside the graph.
type Report struct {
	FilesAnalyzed int                    `json:"files_analyzed"`
	Definitions   int                    `json:"definitions"`
	Issues        []callgraph.ParseIssue `json:"issues,omitempty"`
	Resolution    Resolution             `json:"resolution"`
}

// fileResult is the unit of Phase-1 output, and the unit of caching.
type fileResult struct {
	Defs   []callgraph.Definition `json:"defs"`
	Issues []callgraph.ParseIssue `json:"issues,omitempty"`
}

// AnalyzeProject reads and analyzes files from disk. onProgress, if
// non-nil, is invoked once per file.
func (a *Analyzer) AnalyzeProject(ctx context.Context, files []string, onProgress fileproc.ProgressFunc) (*callgraph.Graph, *Report, error) {
	sources := make([]Source, 0, len(files))
	for _, path := range files {
		sources = append(sources, Source{Path: path})
	}
	return a.analyze(ctx, sources, onProgress)
}

// AnalyzeSources analyzes in-memory (path, text) pairs.
func (a *Analyzer) AnalyzeSources(ctx context.Context, sources []Source) (*callgraph.Graph, *Report, error) {
	return a.analyze(ctx, sources, nil)
}

func (a *Analyzer) analyze(ctx context.Context, sources []Source, onProgress fileproc.ProgressFunc) (*callgraph.Graph, *Report, error) {
	report := &Report{}

	if len(sources) == 0 {
		// Zero vetted files is an empty graph, not an error.
		return callgraph.New(), report, nil
	}

	// Phase 1: per-file extraction, parallel, no shared state.
	results, procErrs := fileproc.MapN(ctx, sources, a.workers,
		func(s Source) string { return s.Path },
		func(psr *parser.Parser, s Source) (fileResult, error) {
			return a.extractOne(psr, s)
		},
		onProgress)

	// The barrier: no resolution until every Phase-1 task has finished.
	// A cancelled run returns before any graph exists; partial graphs are
	// never handed out.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if procErrs != nil {
		for _, pe := range procErrs.Errors {
			report.Issues = append(report.Issues, callgraph.ParseIssue{File: pe.Path, Reason: pe.Err.Error()})
		}
	}

	var defs []callgraph.Definition
	for _, fr := range results {
		defs = append(defs, fr.Defs...)
		report.Issues = append(report.Issues, fr.Issues...)
	}
	// Phase-1 results arrive in pool order; sort so node insertion,
	// resolution, and everything downstream is reproducible.
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	sort.Slice(report.Issues, func(i, j int) bool { return report.Issues[i].File < report.Issues[j].File })

	report.FilesAnalyzed = len(sources) - len(report.Issues)
	if report.FilesAnalyzed < 0 {
		report.FilesAnalyzed = 0
	}
	report.Definitions = len(defs)

	// Phase 2: resolution over the complete set, then nodes before edges.
	edges, resolution := Resolve(defs)
	report.Resolution = resolution

	graph := callgraph.New()
	for _, def := range defs {
		graph.AddNode(def)
	}
	for _, e := range edges {
		if err := graph.AddEdge(e.From, e.To); err != nil {
			// Resolver only emits IDs taken from the definition set, so
			// this is a core bug, not an input problem.
			return nil, nil, fmt.Errorf("graph construction: %w", err)
		}
	}

	return graph, report, nil
}

// extractOne extracts a single source, consulting the cache first. Cache
// entries are keyed by path and validated by a digest of the raw text, so
// an unchanged file skips parsing entirely with identical output.
func (a *Analyzer) extractOne(psr *parser.Parser, s Source) (fileResult, error) {
	lang := parser.DetectLanguage(s.Path)
	if lang == parser.LangUnknown {
		return fileResult{Issues: []callgraph.ParseIssue{{File: s.Path, Reason: "unsupported language"}}}, nil
	}

	text := s.Text
	if text == nil {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return fileResult{Issues: []callgraph.ParseIssue{{File: s.Path, Reason: err.Error()}}}, nil
		}
		text = data
	}

	digest := cache.HashBytes(text)
	if payload, ok := a.cache.Get(s.Path, digest); ok {
		var fr fileResult
		if err := json.Unmarshal(payload, &fr); err == nil {
			return fr, nil
		}
		// Corrupt entry: fall through and rewrite it.
	}

	result, err := psr.Parse(text, lang, s.Path)
	if err != nil {
		return fileResult{Issues: []callgraph.ParseIssue{{File: s.Path, Reason: err.Error()}}}, nil
	}

	defs, issues := Extract(result)
	fr := fileResult{Defs: defs, Issues: issues}

	if payload, err := json.Marshal(fr); err == nil {
		_ = a.cache.Set(s.Path, digest, payload)
	}
	return fr, nil
}
