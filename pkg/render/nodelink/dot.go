package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/erdsync/pkg/diagram"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds each node's id and declaring line as an external label.
	Detailed bool
}

// ToDOT converts a model to Graphviz DOT source. The output is
// deterministic: nodes and links appear in model order.
func ToDOT(m diagram.Model, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph ER {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=14, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range m.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	links := m.ResolvedLinks()
	if len(links) > 0 {
		buf.WriteString("\n")
	}
	for _, l := range links {
		attrs := linkAttrs(l)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -- %q;\n", l.Source, l.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", l.Source, l.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n diagram.Node, opts Options) []string {
	attrs := []string{fmtLabel(n), fmt.Sprintf("pos=%q", fmtPos(n.X, n.Y))}

	switch n.Kind {
	case diagram.KindEntity:
		attrs = append(attrs, "shape=box")
	case diagram.KindWeakEntity:
		attrs = append(attrs, "shape=box", "peripheries=2")
	case diagram.KindRelationship:
		attrs = append(attrs, "shape=diamond")
	case diagram.KindIdentifyingRelationship:
		attrs = append(attrs, "shape=diamond", "peripheries=2")
	case diagram.KindAttribute, diagram.KindKeyAttribute:
		attrs = append(attrs, "shape=ellipse")
	case diagram.KindMultivaluedAttribute:
		attrs = append(attrs, "shape=ellipse", "peripheries=2")
	case diagram.KindDerivedAttribute:
		attrs = append(attrs, "shape=ellipse", "style=\"filled,dashed\"")
	case diagram.KindSpecialization, diagram.KindUnion:
		attrs = append(attrs, "shape=circle", "fixedsize=true", "width=0.4", "fontsize=12")
	}

	if opts.Detailed {
		attrs = append(attrs, fmt.Sprintf("xlabel=%q", fmt.Sprintf("%s @%d", n.ID, n.OriginLine+1)))
	}
	return attrs
}

// fmtLabel returns the label attribute. Key attributes use an HTML label so
// the name can be underlined.
func fmtLabel(n diagram.Node) string {
	if n.Kind == diagram.KindKeyAttribute {
		return fmt.Sprintf("label=<<u>%s</u>>", html.EscapeString(n.Label))
	}
	return fmt.Sprintf("label=%q", n.Label)
}

// fmtPos formats a pinned neato position, flipping y into Graphviz's
// upward axis.
func fmtPos(x, y float64) string {
	return fmtFloat(x) + "," + fmtFloat(-y) + "!"
}

func fmtFloat(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func linkAttrs(l diagram.Link) []string {
	var attrs []string
	if l.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", l.Label))
	}
	if l.IsDouble() {
		attrs = append(attrs, `color="black:invis:black"`)
	}
	return attrs
}

// =============================================================================
// Rendering
// =============================================================================

// RenderSVG renders DOT source to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG with the neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="%s %s %.2f %.2f" width="%.0f" height="%.0f">`,
		m[1], m[2], w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
