// Package nodelink renders diagram models as Graphviz ER diagrams.
//
// # Overview
//
// [ToDOT] emits an undirected graph in classic Chen notation: entities are
// boxes, relationships diamonds, attributes ellipses and specialization or
// union constructs small circles carrying their discriminator. Weak and
// identifying variants get a double outline, key attributes an underlined
// label, derived attributes a dashed outline and multivalued attributes a
// double ellipse.
//
// Every node is pinned at its model position (pos="x,y!") and the neato
// engine is used so Graphviz keeps the coordinates the text declares
// instead of computing its own layout. The y axis is flipped because the
// model uses screen coordinates.
//
//	dot := nodelink.ToDOT(model, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// Links marked total participation are drawn as two parallel strokes. Links
// whose endpoints do not resolve to nodes are omitted.
//
// # Dependencies
//
// Rendering runs in-process through [github.com/goccy/go-graphviz].
package nodelink
