// Package pipeline turns a relationship file into an analyzed co-occurrence
// network document.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Read: load the input once into a [records.Table]
//  2. Analyze: aggregate co-occurrences, build the graph, compute metrics and
//     rankings, tally category distributions and assemble a [Document]
//  3. Export: render the document and optional DOT/SVG views in memory, then
//     write them to timestamped files that never overwrite earlier results
//
// Input errors abort the run before any file is created. Analysis conditions
// that leave a metric undefined, rankings that did not converge and nodes
// without category data are attached to the document as warnings.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	res, err := runner.Execute(ctx, pipeline.Options{Input: "contributors.csv"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Paths[0])
//
// Run the stages independently:
//
//	table, err := runner.Read(ctx, opts)
//	doc, err := runner.Analyze(ctx, table, opts)
//	paths, err := runner.Export(ctx, doc, opts)
package pipeline

import (
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/conet/pkg/errors"
	conetio "github.com/matzehuels/conet/pkg/io"
	"github.com/matzehuels/conet/pkg/rank"
	"github.com/matzehuels/conet/pkg/records"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and config files
// =============================================================================

const (
	// DefaultNodeIndex is the field holding node identifiers (e.g. contributor).
	DefaultNodeIndex = 1

	// DefaultGroupIndex is the field holding the grouping key (e.g. project).
	DefaultGroupIndex = 0

	// DefaultOutputDir is where result files are written.
	DefaultOutputDir = "results"

	// DefaultLayout is the Graphviz engine used for DOT and SVG output.
	DefaultLayout = "neato"
)

// Format constants for output artifacts.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one analysis run. It can be loaded
// from a TOML file with [LoadOptions].
type Options struct {
	// Read options
	Input      string `json:"input" toml:"input"`
	Delimiter  string `json:"delimiter,omitempty" toml:"delimiter"`
	NodeIndex  int    `json:"node_index" toml:"node_index"`
	GroupIndex int    `json:"group_index" toml:"group_index"`

	// Analysis options
	NoGeo bool         `json:"no_geo,omitempty" toml:"no_geo"` // Skip the category distribution of the last field
	HITS  bool         `json:"hits,omitempty" toml:"hits"`
	Rank  rank.Options `json:"rank" toml:"rank"`

	// Export options
	Name      string   `json:"name,omitempty" toml:"name"` // Overrides the input base name in output files
	OutputDir string   `json:"output_dir,omitempty" toml:"output_dir"`
	Formats   []string `json:"formats,omitempty" toml:"formats"`
	Layout    string   `json:"layout,omitempty" toml:"layout"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`

	// indicesSet marks indices chosen by SetIndices or a config file, which
	// SetDefaults must keep even when both are zero.
	indicesSet bool

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetIndices sets the node and group index explicitly. Explicit indices are
// validated as given and never replaced by the defaults.
func (o *Options) SetIndices(node, group int) {
	o.NodeIndex, o.GroupIndex = node, group
	o.indicesSet = true
}

// SetDefaults fills unset fields. Indices left at their zero value (and not
// set through [Options.SetIndices] or a config file) select the default pair.
func (o *Options) SetDefaults() {
	if o.Delimiter == "" {
		o.Delimiter = records.DefaultDelimiter
	}
	if !o.indicesSet && o.NodeIndex == 0 && o.GroupIndex == 0 {
		o.NodeIndex = DefaultNodeIndex
		o.GroupIndex = DefaultGroupIndex
	}
	o.Rank.SetDefaults()
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if !slices.Contains(o.Formats, FormatJSON) {
		o.Formats = append([]string{FormatJSON}, o.Formats...)
	}
	o.Formats = uniq(o.Formats)
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
}

// Validate checks the options without modifying them.
func (o *Options) Validate() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input file is required")
	}
	if err := errors.ValidateIndices(o.NodeIndex, o.GroupIndex); err != nil {
		return err
	}
	if err := errors.ValidateDelimiter(o.Delimiter); err != nil {
		return err
	}
	if err := o.Rank.Validate(); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults applies defaults and validates. This method is
// idempotent: calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// MinFields returns the field count every record needs: enough to address
// both indices, plus a trailing category field when enrichment is on.
func (o *Options) MinFields() int {
	n := records.Required(o.NodeIndex, o.GroupIndex)
	if !o.NoGeo {
		n++
	}
	return n
}

// OutputBase returns the base name of output files.
func (o *Options) OutputBase() string {
	if o.Name != "" {
		return o.Name
	}
	return conetio.BaseName(o.Input)
}

// LoadOptions reads options from a TOML file. Unknown keys are rejected. An
// index missing from the file takes its default; indices present in the file
// are kept as written.
func LoadOptions(path string) (Options, error) {
	var o Options
	md, err := toml.DecodeFile(path, &o)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.New(errors.ErrCodeInvalidFormat, "%s: unknown option %q", path, undecoded[0].String())
	}
	if !md.IsDefined("node_index") {
		o.NodeIndex = DefaultNodeIndex
	}
	if !md.IsDefined("group_index") {
		o.GroupIndex = DefaultGroupIndex
	}
	o.indicesSet = true
	return o, nil
}

// String summarizes the options for debug logs.
func (o *Options) String() string {
	return fmt.Sprintf("input=%s node=%d group=%d geo=%t hits=%t formats=%v",
		o.Input, o.NodeIndex, o.GroupIndex, !o.NoGeo, o.HITS, o.Formats)
}

func uniq(s []string) []string {
	out := s[:0:0]
	for _, v := range s {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
