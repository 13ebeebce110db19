package lsp

import (
	"fmt"
	"sync"
	"unicode/utf16"

	"github.com/charmbracelet/log"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/matzehuels/erdsync/pkg/diagram"
	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/editor"
	apperr "github.com/matzehuels/erdsync/pkg/errors"
)

const diagnosticSource = "erdsync"

// PublishFunc delivers diagnostics for one document.
type PublishFunc func(uri string, diags []protocol.Diagnostic)

// Workspace tracks open documents. Each document has its own editor, so
// edits debounce independently and diagnostics are published after every
// parse.
type Workspace struct {
	opts    editor.Options
	publish PublishFunc

	mu   sync.Mutex
	docs map[string]*editor.Editor
}

// NewWorkspace returns an empty workspace. opts is the template for each
// document editor; its OnParse is replaced.
func NewWorkspace(opts editor.Options, publish PublishFunc) *Workspace {
	if publish == nil {
		publish = func(string, []protocol.Diagnostic) {}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	opts.Source = "lsp"
	return &Workspace{opts: opts, publish: publish, docs: make(map[string]*editor.Editor)}
}

// Open starts tracking uri and parses it immediately.
func (w *Workspace) Open(uri, text string) {
	opts := w.opts
	opts.OnParse = func(s editor.Snapshot) {
		w.publish(uri, Diagnostics(s))
	}
	ed := editor.New(text, opts)

	w.mu.Lock()
	if old, ok := w.docs[uri]; ok {
		old.Close()
	}
	w.docs[uri] = ed
	w.mu.Unlock()

	ed.Flush()
}

// Change replaces the text of uri and schedules a parse.
func (w *Workspace) Change(uri, text string) bool {
	ed := w.editor(uri)
	if ed == nil {
		return false
	}
	ed.SetText(text)
	return true
}

// Close stops tracking uri and clears its diagnostics.
func (w *Workspace) Close(uri string) {
	w.mu.Lock()
	ed, ok := w.docs[uri]
	delete(w.docs, uri)
	w.mu.Unlock()
	if ok {
		ed.Close()
		w.publish(uri, []protocol.Diagnostic{})
	}
}

// Shutdown closes every document.
func (w *Workspace) Shutdown() {
	w.mu.Lock()
	docs := w.docs
	w.docs = make(map[string]*editor.Editor)
	w.mu.Unlock()
	for _, ed := range docs {
		ed.Close()
	}
}

func (w *Workspace) editor(uri string) *editor.Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.docs[uri]
}

// current returns an up-to-date snapshot, parsing first if the text changed.
func (w *Workspace) current(uri string) (editor.Snapshot, bool) {
	ed := w.editor(uri)
	if ed == nil {
		return editor.Snapshot{}, false
	}
	if ed.Stale() || ed.Pending() {
		return ed.Flush(), true
	}
	return ed.Snapshot(), true
}

// =============================================================================
// Queries
// =============================================================================

// Symbols lists the nodes of uri in declaration order.
func (w *Workspace) Symbols(uri string) []protocol.DocumentSymbol {
	snap, ok := w.current(uri)
	if !ok {
		return nil
	}
	doc := dsl.NewDocument(snap.Text)
	symbols := make([]protocol.DocumentSymbol, 0, len(snap.Model.Nodes))
	for _, n := range snap.Model.Nodes {
		raw, _ := doc.Line(n.OriginLine)
		detail := fmt.Sprintf("%s (%g, %g)", n.Kind, n.X, n.Y)
		rng := lineRange(n.OriginLine, raw)
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           n.ID,
			Detail:         &detail,
			Kind:           symbolKind(n.Kind),
			Range:          rng,
			SelectionRange: rng,
		})
	}
	return symbols
}

// Hover describes the node declared on line, if any.
func (w *Workspace) Hover(uri string, line int) *protocol.Hover {
	snap, ok := w.current(uri)
	if !ok {
		return nil
	}
	for _, n := range snap.Model.Nodes {
		if n.OriginLine != line {
			continue
		}
		placement := "pinned"
		if n.Placed {
			placement = "auto-placed"
		}
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: fmt.Sprintf("**%s** `%s`\n\n(%g, %g), %s", n.ID, n.Kind, n.X, n.Y, placement),
			},
		}
	}
	return nil
}

// MoveEdit writes (x, y) for node id into the editor of uri and returns the
// single-line edit a client applies to stay in sync.
func (w *Workspace) MoveEdit(uri, id string, x, y float64) (protocol.WorkspaceEdit, error) {
	if err := apperr.ValidateNodeID(id); err != nil {
		return protocol.WorkspaceEdit{}, err
	}
	if err := apperr.ValidateCoordinate("x", x); err != nil {
		return protocol.WorkspaceEdit{}, err
	}
	if err := apperr.ValidateCoordinate("y", y); err != nil {
		return protocol.WorkspaceEdit{}, err
	}

	snap, ok := w.current(uri)
	if !ok {
		return protocol.WorkspaceEdit{}, apperr.New(apperr.ErrCodeNotFound, "document %s is not open", uri)
	}
	n := snap.Model.NodeByID(id)
	if n == nil {
		return protocol.WorkspaceEdit{}, apperr.New(apperr.ErrCodeNodeNotFound, "no node %q", id)
	}
	doc := dsl.NewDocument(snap.Text)
	raw, ok := doc.Line(n.OriginLine)
	if !ok {
		return protocol.WorkspaceEdit{}, apperr.New(apperr.ErrCodeStaleLine, "line %d for node %q no longer exists", n.OriginLine+1, id)
	}

	ed := w.editor(uri)
	if ed == nil || !ed.Move(id, x, y) {
		return protocol.WorkspaceEdit{}, apperr.New(apperr.ErrCodeStaleLine, "node %q changed while moving", id)
	}

	return protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			uri: {{Range: lineRange(n.OriginLine, raw), NewText: dsl.SetCoords(raw, x, y)}},
		},
	}, nil
}

// Diagnostics reports ignored lines and links whose endpoints do not exist.
func Diagnostics(s editor.Snapshot) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	doc := dsl.NewDocument(s.Text)
	source := diagnosticSource

	for _, ig := range s.Ignored {
		raw, _ := doc.Line(ig.Line)
		sev := protocol.DiagnosticSeverityInformation
		diags = append(diags, protocol.Diagnostic{
			Range:    lineRange(ig.Line, raw),
			Severity: &sev,
			Source:   &source,
			Message:  "ignored: " + ig.Reason,
		})
	}

	ids := make(map[string]bool, len(s.Model.Nodes))
	for _, n := range s.Model.Nodes {
		ids[n.ID] = true
	}
	for _, l := range s.Model.Links {
		for _, end := range []string{l.Source, l.Target} {
			if ids[end] {
				continue
			}
			line := findLinkLine(doc, l, end)
			raw, _ := doc.Line(line)
			sev := protocol.DiagnosticSeverityWarning
			diags = append(diags, protocol.Diagnostic{
				Range:    lineRange(line, raw),
				Severity: &sev,
				Source:   &source,
				Message:  fmt.Sprintf("unknown node %q; link is not drawn", end),
			})
		}
	}
	return diags
}

// findLinkLine locates the first line whose statement yields a link with
// the given missing endpoint. Links do not record their line.
func findLinkLine(doc dsl.Document, l diagram.Link, end string) int {
	for i, raw := range doc {
		cl := dsl.ClassifyLine(raw)
		if cl.Skip {
			continue
		}
		switch st := dsl.ParseStatement(cl.Remainder).(type) {
		case dsl.LinkDecl:
			if st.Source == l.Source && st.Target == l.Target {
				return i
			}
		case dsl.NodeDecl:
			if st.Owner == end && l.Source == end {
				return i
			}
		case dsl.HierarchyDecl:
			if st.Superclass == end && l.Source == end {
				return i
			}
		}
	}
	return 0
}

// lineRange spans all of line, measured in UTF-16 code units.
func lineRange(line int, raw string) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
		End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(utf16Len(raw))},
	}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func symbolKind(k diagram.Kind) protocol.SymbolKind {
	switch {
	case k == diagram.KindEntity || k == diagram.KindWeakEntity:
		return protocol.SymbolKindClass
	case k == diagram.KindRelationship || k == diagram.KindIdentifyingRelationship:
		return protocol.SymbolKindInterface
	case k.IsAttribute():
		return protocol.SymbolKindField
	case k.IsHierarchy():
		return protocol.SymbolKindEnum
	}
	return protocol.SymbolKindObject
}
