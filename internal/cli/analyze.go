package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/conet/pkg/metrics"
	"github.com/matzehuels/conet/pkg/pipeline"
)

// analyzeFlags holds the analyze command's flag values.
type analyzeFlags struct {
	config     string
	delimiter  string
	nodeIndex  int
	groupIndex int
	noGeo      bool
	hits       bool
	name       string
	output     string
	formats    string
	layout     string
	damping    float64
	tolerance  float64
	maxIter    int
	top        int
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze the co-occurrence network of a relationship file",
		Long: `Analyze reads a delimited file with a header line, links every two nodes
that share a group, and writes network metrics, PageRank scores and the
category distribution of each node (taken from the last field) to
<output>/<name>_<YYYYMMDD-HHMMSS>.json.

Options can also be loaded from a TOML file with --config; flags given on
the command line override the file.`,
		Example: `  conet analyze contributors.csv
  conet analyze contributors.csv --node-index 1 --group-index 0 --hits
  conet analyze --config conet.toml --format json,svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd, args)
			if err != nil {
				return err
			}
			return c.runAnalyze(cmd, opts, f.top)
		},
	}

	f.bind(cmd)

	return cmd
}

// bind registers the analyze flags on cmd.
func (f *analyzeFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "", "TOML options file")
	flags.StringVarP(&f.delimiter, "delimiter", "d", ",", "field delimiter")
	flags.IntVar(&f.nodeIndex, "node-index", pipeline.DefaultNodeIndex, "field holding node identifiers")
	flags.IntVar(&f.groupIndex, "group-index", pipeline.DefaultGroupIndex, "field holding the grouping key")
	flags.BoolVar(&f.noGeo, "no-geo", false, "skip the category distribution of the last field")
	flags.BoolVar(&f.hits, "hits", false, "also compute HITS hub and authority scores")
	flags.StringVarP(&f.name, "name", "n", "", "output base name (default: input file name)")
	flags.StringVarP(&f.output, "output", "o", pipeline.DefaultOutputDir, "output directory")
	flags.StringVarP(&f.formats, "format", "f", pipeline.FormatJSON, "output formats: json,dot,svg")
	flags.StringVar(&f.layout, "layout", pipeline.DefaultLayout, "Graphviz layout engine for dot/svg")
	flags.Float64Var(&f.damping, "damping", 0.85, "PageRank damping factor")
	flags.Float64Var(&f.tolerance, "tolerance", 1e-6, "convergence tolerance (L1)")
	flags.IntVar(&f.maxIter, "max-iter", 100, "iteration cap for PageRank and HITS")
	flags.IntVar(&f.top, "top", defaultTop, "number of ranked nodes to print (0 for none)")
}

// options merges the config file, if any, with explicitly set flags.
func (f *analyzeFlags) options(cmd *cobra.Command, args []string) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.config != "" {
		loaded, err := pipeline.LoadOptions(f.config)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	fileSet := f.config != ""
	set := func(name string) bool { return !fileSet || cmd.Flags().Changed(name) }

	if len(args) == 1 {
		opts.Input = args[0]
	}
	if set("delimiter") {
		opts.Delimiter = f.delimiter
	}
	if set("node-index") || set("group-index") {
		node, group := opts.NodeIndex, opts.GroupIndex
		if set("node-index") {
			node = f.nodeIndex
		}
		if set("group-index") {
			group = f.groupIndex
		}
		opts.SetIndices(node, group)
	}
	if set("no-geo") {
		opts.NoGeo = f.noGeo
	}
	if set("hits") {
		opts.HITS = f.hits
	}
	if set("name") {
		opts.Name = f.name
	}
	if set("output") {
		opts.OutputDir = f.output
	}
	if set("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if set("layout") {
		opts.Layout = f.layout
	}
	if set("damping") {
		opts.Rank.Damping = f.damping
	}
	if set("tolerance") {
		opts.Rank.Tolerance = f.tolerance
	}
	if set("max-iter") {
		opts.Rank.MaxIterations = f.maxIter
	}
	if opts.Input == "" {
		return opts, fmt.Errorf("an input file is required (argument or 'input' in --config)")
	}
	return opts, nil
}

func (c *CLI) runAnalyze(cmd *cobra.Command, opts pipeline.Options, top int) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	st := startStage(logger, "analysis", "input", opts.Input)
	res, err := c.newRunner().Execute(ctx, opts)
	if err != nil {
		return err
	}
	st.done("nodes", res.Stats.NodeCount, "edges", res.Stats.EdgeCount)

	doc := res.Document
	printSuccess("Analyzed %s", StyleHighlight.Render(doc.Source))
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.Records)
	printDocument(doc, top)

	printNewline()
	printInfo("Wrote results")
	for _, p := range res.Paths {
		printFile(p)
	}
	return nil
}

// printDocument prints the metrics, warnings and top ranked nodes of doc.
func printDocument(doc *pipeline.Document, top int) {
	printNewline()
	printMetrics(doc.Result)

	for _, w := range doc.Warnings {
		printWarning("%s", w.Message)
	}

	if top > 0 && len(doc.PageRank.Entries) > 0 {
		printNewline()
		fmt.Println(rankTable(doc, top))
	}
}

// printMetrics prints the scalar network metrics, "n/a" for undefined ones.
func printMetrics(m metrics.Result) {
	printKeyValue("nodes", strconv.Itoa(m.NodeNum))
	printKeyValue("edges", strconv.Itoa(m.EdgeNum))
	printKeyValue("avg degree", formatFloat(m.AvgDegree))
	printKeyValue("density", formatFloat(m.Density))
	printKeyValue("assortativity", formatValue(m.Assortativity))
	printKeyValue("clustering", formatValue(m.AverageClustering))
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func formatValue(v metrics.Value) string {
	if !v.Valid {
		return "n/a"
	}
	return formatFloat(v.V)
}

// rankTable renders the top n PageRank entries with their most common
// category.
func rankTable(doc *pipeline.Document, n int) string {
	entries := doc.PageRank.Entries[:min(n, len(doc.PageRank.Entries))]
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.ID,
			strconv.FormatFloat(e.Entry.Rank, 'f', 5, 64),
			topCategory(e.Entry.Categories),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Node", "PageRank", "Top category").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col == 2 {
				return cellStyle.Foreground(colorCyan)
			}
			return cellStyle
		}).
		String()
}

// topCategory returns "<category> (<pct>%)" for the largest share, ties
// broken by name, or "" without data.
func topCategory(cats map[string]float64) string {
	if len(cats) == 0 {
		return ""
	}
	names := slices.Sorted(maps.Keys(cats))
	best := names[0]
	for _, name := range names[1:] {
		if cats[name] > cats[best] {
			best = name
		}
	}
	return fmt.Sprintf("%s (%.0f%%)", best, cats[best])
}
