package dsl

import (
	"github.com/matzehuels/erdsync/pkg/diagram"
	"github.com/matzehuels/erdsync/pkg/layout"
)

// Options configures a parse pass.
type Options struct {
	// Layout configures the spiral used for nodes without coordinates.
	// Zero fields take the layout package defaults.
	Layout layout.Config
}

// IgnoredLine records a non-blank, non-comment line that contributed
// nothing to the model.
type IgnoredLine struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Result is the output of one parse pass.
type Result struct {
	Model   diagram.Model
	Ignored []IgnoredLine
}

// ParseString is shorthand for Parse(NewDocument(text), opts).
func ParseString(text string, opts Options) *Result {
	return Parse(NewDocument(text), opts)
}

// Parse builds a model from doc, top to bottom. It never fails: unusable
// lines land in Result.Ignored. Links are stored as written even when an
// endpoint does not name a node; see [diagram.Model.ResolvedLinks].
func Parse(doc Document, opts Options) *Result {
	b := &builder{
		ids:    NewResolver(),
		spiral: layout.NewSpiral(opts.Layout),
		res: &Result{Model: diagram.Model{
			Nodes: []diagram.Node{},
			Links: []diagram.Link{},
		}},
	}
	for i, raw := range doc {
		b.line(i, raw)
	}
	return b.res
}

type builder struct {
	ids    *Resolver
	spiral *layout.Spiral
	res    *Result
}

func (b *builder) line(i int, raw string) {
	cl := ClassifyLine(raw)
	if cl.Skip {
		return
	}

	switch st := ParseStatement(cl.Remainder).(type) {
	case NodeDecl:
		id := b.ids.Resolve(st.Label, st.Kind, true, i)
		b.addNode(diagram.Node{ID: id, Kind: st.Kind, Label: st.Label, OriginLine: i}, cl)
		if st.Owner != "" {
			b.addLink(diagram.Link{Source: st.Owner, Target: id, Style: diagram.StyleSolid})
		}
	case HierarchyDecl:
		id := b.ids.Resolve(st.Discriminator, st.Kind, st.Explicit, i)
		b.addNode(diagram.Node{
			ID:            id,
			Kind:          st.Kind,
			Label:         st.Discriminator,
			Discriminator: st.Discriminator,
			OriginLine:    i,
		}, cl)
		if st.Superclass != "" {
			b.addLink(diagram.Link{Source: st.Superclass, Target: id, Style: diagram.StyleDouble})
		}
	case LinkDecl:
		b.addLink(diagram.Link{Source: st.Source, Target: st.Target, Label: st.Label, Style: st.Style})
	case Ignored:
		b.res.Ignored = append(b.res.Ignored, IgnoredLine{Line: i, Text: raw, Reason: st.Reason})
	}
}

func (b *builder) addNode(n diagram.Node, cl Line) {
	if cl.HasCoords {
		n.X, n.Y = cl.X, cl.Y
	} else {
		n.X, n.Y = b.spiral.Next()
		n.Placed = true
	}
	b.res.Model.Nodes = append(b.res.Model.Nodes, n)
}

func (b *builder) addLink(l diagram.Link) {
	b.res.Model.Links = append(b.res.Model.Links, l)
}
