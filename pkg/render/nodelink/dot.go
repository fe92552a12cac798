package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/conet/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Scores sizes nodes by rank. Nodes without a score get the minimum size.
	Scores map[string]float64
	// EdgeLabels prints the weight on every edge.
	EdgeLabels bool
	// Layout is the Graphviz engine: "neato" (default), "fdp", "circo" or
	// "dot".
	Layout string
}

const (
	minFontSize = 12.0
	maxFontSize = 36.0
	maxPenWidth = 8.0
)

// ToDOT converts a co-occurrence graph to Graphviz DOT format. Edge pen
// width grows with weight, and node font size with the node's score.
func ToDOT(g *graph.Graph, opts Options) string {
	layout := opts.Layout
	if layout == "" {
		layout = "neato"
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", layout)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=white, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [color=\"#64748b\"];\n")
	buf.WriteString("\n")

	maxScore := 0.0
	for _, s := range opts.Scores {
		maxScore = max(maxScore, s)
	}
	for _, id := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", id)}
		size := minFontSize
		if s, ok := opts.Scores[id]; ok && maxScore > 0 {
			size += (maxFontSize - minFontSize) * s / maxScore
			attrs = append(attrs, fmt.Sprintf("tooltip=%q", fmt.Sprintf("%s: %.4f", id, s)))
		}
		attrs = append(attrs, fmt.Sprintf("fontsize=%.1f", size))
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	maxW := float64(g.MaxWeight())
	for _, e := range g.Edges() {
		attrs := []string{fmt.Sprintf("penwidth=%.2f", 1+(maxPenWidth-1)*(float64(e.Weight)-1)/max(maxW-1, 1))}
		if opts.EdgeLabels {
			attrs = append(attrs, fmt.Sprintf("label=\"%d\"", e.Weight))
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", e.A, e.B, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
