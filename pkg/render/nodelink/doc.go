// Package nodelink renders co-occurrence graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Scores: pr.Map()})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT is an undirected graph laid out with neato by default.
// Edges are drawn thicker the more groups their endpoints share, and nodes
// are labeled larger the higher they rank. The DOT source can be saved and
// processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
