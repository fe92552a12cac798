package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/conet/pkg/enrich"
	"github.com/matzehuels/conet/pkg/errors"
	"github.com/matzehuels/conet/pkg/graph"
	conetio "github.com/matzehuels/conet/pkg/io"
	"github.com/matzehuels/conet/pkg/metrics"
	"github.com/matzehuels/conet/pkg/observability"
	"github.com/matzehuels/conet/pkg/rank"
	"github.com/matzehuels/conet/pkg/records"
)

// Runner executes analysis runs.
//
// The Runner holds no run state: multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Logger *log.Logger

	// Now returns the run timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger, Now: time.Now}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the assembled analysis.
	Document *Document

	// Graph is the co-occurrence graph the document was computed from.
	Graph *graph.Graph

	// Paths lists the written files in format order.
	Paths []string

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records     int
	NodeCount   int
	EdgeCount   int
	ReadTime    time.Duration
	AnalyzeTime time.Duration
	ExportTime  time.Duration
}

// Execute runs the complete read → analyze → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	opts.Logger.Debug("options", "opts", opts.String())

	result := &Result{}

	// Stage 1: Read
	readStart := time.Now()
	table, err := r.Read(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	result.Stats.ReadTime = time.Since(readStart)
	result.Stats.Records = table.Len()

	opts.Logger.Info("read records",
		"records", table.Len(),
		"duration", result.Stats.ReadTime)

	// Stage 2: Analyze
	analyzeStart := time.Now()
	doc, g, err := r.analyze(ctx, table, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Document = doc
	result.Graph = g
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	opts.Logger.Info("analyzed network",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.AnalyzeTime)
	for _, w := range doc.Warnings {
		opts.Logger.Warn(w.Message, "code", w.Code)
	}

	// Stage 3: Export
	exportStart := time.Now()
	paths, err := r.export(ctx, doc, g, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Paths = paths
	result.Stats.ExportTime = time.Since(exportStart)

	opts.Logger.Info("wrote results",
		"files", len(paths),
		"duration", result.Stats.ExportTime)

	return result, nil
}

// Read loads the input file once. Records too short for the configured
// fields fail the whole read.
func (r *Runner) Read(ctx context.Context, opts Options) (*records.Table, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnReadStart(ctx, opts.Input)
	start := time.Now()

	table, err := records.ReadFile(opts.Input, records.Format{Delimiter: opts.Delimiter}, opts.MinFields())
	n := 0
	if table != nil {
		n = table.Len()
	}
	hooks.OnReadComplete(ctx, opts.Input, n, time.Since(start), err)
	return table, err
}

// Analyze builds the graph from table and assembles the document. It does
// no I/O.
func (r *Runner) Analyze(ctx context.Context, table *records.Table, opts Options) (*Document, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	doc, _, err := r.analyze(ctx, table, opts)
	return doc, err
}

func (r *Runner) analyze(ctx context.Context, table *records.Table, opts Options) (doc *Document, g *graph.Graph, err error) {
	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, table.Len())
	start := time.Now()
	defer func() {
		nodes, edges := 0, 0
		if g != nil {
			nodes, edges = g.NodeCount(), g.EdgeCount()
		}
		hooks.OnAnalyzeComplete(ctx, nodes, edges, time.Since(start), err)
	}()

	pairs, err := graph.Aggregate(table.Records, opts.NodeIndex, opts.GroupIndex)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate: %w", err)
	}
	g = graph.New(pairs)
	opts.Logger.Debug("built graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	m, err := metrics.Compute(g)
	if err != nil && !errors.Is(err, errors.ErrCodeInsufficientData) {
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	pr := rank.PageRank(g, opts.Rank)
	opts.Logger.Debug("pagerank", "iterations", pr.Iterations, "converged", pr.Converged)

	var hits *rank.HubsAuthorities
	if opts.HITS {
		h := rank.HITS(g, opts.Rank)
		hits = &h
		opts.Logger.Debug("hits", "iterations", h.Hubs.Iterations, "converged", h.Hubs.Converged)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var dist enrich.Distribution
	if !opts.NoGeo {
		dist, err = enrich.Tally(table.Records, opts.NodeIndex, enrich.LastField)
		if err != nil {
			return nil, nil, fmt.Errorf("enrich: %w", err)
		}
	}

	assembled := Assemble(m, pr, hits, dist)
	if err := assembled.PageRank.Warning(); err != nil {
		opts.Logger.Debug(errors.UserMessage(err), "code", errors.GetCode(err))
	}
	assembled.RunID = uuid.NewString()
	assembled.Source = filepath.Base(opts.Input)
	assembled.GeneratedAt = r.now().UTC().Truncate(time.Second)
	return &assembled, g, nil
}

// Export renders doc and writes all artifacts to opts.OutputDir. It returns
// the written paths.
func (r *Runner) Export(ctx context.Context, doc *Document, g *graph.Graph, opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return r.export(ctx, doc, g, opts)
}

func (r *Runner) export(ctx context.Context, doc *Document, g *graph.Graph, opts Options) (paths []string, err error) {
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnExportComplete(ctx, opts.Formats, time.Since(start), err) }()

	artifacts, err := Render(ctx, doc, g, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stem := conetio.Stem(opts.OutputBase(), doc.GeneratedAt.Local())
	return conetio.Export(opts.OutputDir, stem, artifacts)
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
