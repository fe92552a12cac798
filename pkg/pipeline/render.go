package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/conet/pkg/graph"
	conetio "github.com/matzehuels/conet/pkg/io"
	"github.com/matzehuels/conet/pkg/render/nodelink"
)

// Render produces every requested artifact in memory, in opts.Formats
// order. Nothing is written, so a render failure leaves no partial output.
func Render(ctx context.Context, doc *Document, g *graph.Graph, opts Options) ([]conetio.Artifact, error) {
	var dot string
	if g != nil {
		dot = nodelink.ToDOT(g, nodelink.Options{
			Scores:     doc.Scores(),
			EdgeLabels: true,
			Layout:     opts.Layout,
		})
	}

	artifacts := make([]conetio.Artifact, 0, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := renderFormat(ctx, format, doc, dot)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts = append(artifacts, conetio.Artifact{Ext: format, Data: data})
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, format string, doc *Document, dot string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return conetio.MarshalJSON(doc)
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	default:
		return nil, ValidateFormat(format)
	}
}
