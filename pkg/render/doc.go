// Package render turns diagram models into output artifacts.
//
// The [nodelink] subpackage builds Graphviz DOT with ER notation and renders
// it in-process to SVG or PNG. This package holds what the renderers share:
// the [Format] enumeration used by the pipeline, CLI and HTTP API, and
// SVG-to-PDF conversion through the external rsvg-convert tool.
//
//	f, err := render.ParseFormat("svg")
//	dot := nodelink.ToDOT(model, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/erdsync/pkg/render/nodelink
package render
