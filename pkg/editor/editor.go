// Package editor keeps a diagram document and its parsed model in sync.
//
// An [Editor] owns the authoritative text. Text changes schedule a
// debounced re-parse; node drags mutate the live model only; releasing a
// drag writes the node's position into its declaring line once and then
// re-enters the debounced parse path. Those two points, parse and
// write-back, are the only places text and model are reconciled, and an
// internal mutex keeps them from running concurrently.
//
//	ed := editor.New(text, editor.Options{OnParse: redraw})
//	ed.SetText(newText)          // parse after the debounce delay
//	ed.Drag("EMPLOYEE", 140, 90) // live feedback, text untouched
//	ed.Release("EMPLOYEE")       // one write-back, then re-parse
package editor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdsync/pkg/diagram"
	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/observability"
)

// DefaultDebounce is the delay between the last text change and the parse.
const DefaultDebounce = 300 * time.Millisecond

// Snapshot is the state delivered after each parse.
type Snapshot struct {
	Text    string
	Model   diagram.Model
	Ignored []dsl.IgnoredLine
	Version int
}

// Options configures an Editor.
type Options struct {
	Debounce time.Duration
	Parse    dsl.Options
	Logger   *log.Logger

	// Source labels parse events for observability hooks.
	Source string

	// OnParse is called after every parse with a private copy of the new
	// state. Calls are serialized in parse order and never made while the
	// editor is locked, so OnParse may call back into the Editor, Flush
	// included. A snapshot produced by such a nested call is delivered
	// after the current OnParse returns.
	OnParse func(Snapshot)
}

// Editor is safe for concurrent use.
type Editor struct {
	opts     Options
	debounce *Debouncer

	mu      sync.Mutex
	doc     dsl.Document
	result  *dsl.Result
	version int // bumped on every text change
	parsed  int // version of the text behind result

	// reshaped is set by SetText and cleared by parse. While set, origin
	// lines in result may point at different lines of doc.
	reshaped bool

	// queue holds snapshots waiting for OnParse, in parse order.
	queue      []Snapshot
	delivering bool
}

// New returns an editor holding text. The first parse happens on Flush or
// after the first debounce interval following a change; call Flush to get
// a model immediately.
func New(text string, opts Options) *Editor {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Source == "" {
		opts.Source = "editor"
	}
	e := &Editor{
		opts:    opts,
		doc:     dsl.NewDocument(text),
		version: 1,
	}
	e.debounce = NewDebouncer(opts.Debounce, func() { e.parse() })
	return e
}

// SetText replaces the document and schedules a parse. Rapid calls are
// coalesced; only the text present when the timer fires is parsed.
func (e *Editor) SetText(text string) {
	e.mu.Lock()
	e.doc = dsl.NewDocument(text)
	e.version++
	e.reshaped = true
	e.mu.Unlock()
	e.debounce.Trigger()
}

// Flush cancels any pending parse and parses now.
func (e *Editor) Flush() Snapshot {
	e.debounce.Stop()
	return e.parse()
}

func (e *Editor) parse() Snapshot {
	e.mu.Lock()
	start := time.Now()
	res := dsl.Parse(e.doc, e.opts.Parse)
	elapsed := time.Since(start)
	e.result = res
	e.parsed = e.version
	e.reshaped = false
	snap := e.snapshotLocked()
	if e.opts.OnParse != nil {
		e.queue = append(e.queue, snap)
	}
	e.mu.Unlock()

	observability.Sync().OnParse(context.Background(), e.opts.Source, len(res.Model.Nodes), len(res.Ignored), elapsed)
	e.opts.Logger.Debug("parsed document",
		"version", snap.Version,
		"nodes", len(snap.Model.Nodes),
		"links", len(snap.Model.Links),
		"ignored", len(snap.Ignored),
		"duration", elapsed)

	e.deliver()
	return snap
}

// deliver drains the snapshot queue into OnParse on the calling goroutine.
// A call made while another goroutine, or OnParse itself, is already
// draining returns at once and leaves its snapshot to that drain.
func (e *Editor) deliver() {
	e.mu.Lock()
	if e.delivering {
		e.mu.Unlock()
		return
	}
	e.delivering = true
	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()
		e.opts.OnParse(next)
		e.mu.Lock()
	}
	e.delivering = false
	e.mu.Unlock()
}

func (e *Editor) snapshotLocked() Snapshot {
	s := Snapshot{Text: e.doc.String(), Version: e.version}
	if e.result != nil {
		s.Model = e.result.Model.Clone()
		s.Ignored = append([]dsl.IgnoredLine(nil), e.result.Ignored...)
	}
	return s
}

// Snapshot returns the current text and the live model, including any
// uncommitted drag positions.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Text returns the current document text.
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.String()
}

// Stale reports whether the text changed since the last parse.
func (e *Editor) Stale() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result == nil || e.parsed != e.version
}

// Pending reports whether a debounced parse is scheduled.
func (e *Editor) Pending() bool {
	return e.debounce.Pending()
}

// Drag moves a node in the live model without touching the text. It
// reports false when no parsed node has that id.
func (e *Editor) Drag(id string, x, y float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return false
	}
	n := e.result.Model.NodeByID(id)
	if n == nil {
		return false
	}
	n.X, n.Y = x, y
	return true
}

// Release writes the node's live position into the line that declared it
// and schedules a parse of the new text. It reports false, leaving the
// text unchanged, when the id is unknown, its line no longer exists, or
// SetText replaced the text after the last parse. Earlier write-backs keep
// every line in place and do not block later ones.
func (e *Editor) Release(id string) bool {
	e.mu.Lock()
	if e.result == nil {
		e.mu.Unlock()
		return false
	}
	n := e.result.Model.NodeByID(id)
	if n == nil {
		e.mu.Unlock()
		e.opts.Logger.Warn("write-back for unknown node", "id", id)
		observability.Sync().OnWriteBack(context.Background(), id, false)
		return false
	}
	if e.reshaped {
		line := n.OriginLine
		e.mu.Unlock()
		e.opts.Logger.Warn("write-back skipped, text changed since the last parse", "id", id, "line", line)
		observability.Sync().OnWriteBack(context.Background(), id, false)
		return false
	}
	doc, ok := dsl.WriteBack(e.doc, n.OriginLine, n.X, n.Y)
	if !ok {
		line := n.OriginLine
		e.mu.Unlock()
		e.opts.Logger.Warn("write-back skipped, origin line is stale", "id", id, "line", line)
		observability.Sync().OnWriteBack(context.Background(), id, false)
		return false
	}
	e.doc = doc
	e.version++
	e.mu.Unlock()

	observability.Sync().OnWriteBack(context.Background(), id, true)
	e.debounce.Trigger()
	return true
}

// Move is Drag followed by Release.
func (e *Editor) Move(id string, x, y float64) bool {
	if !e.Drag(id, x, y) {
		e.opts.Logger.Warn("move for unknown node", "id", id)
		observability.Sync().OnWriteBack(context.Background(), id, false)
		return false
	}
	return e.Release(id)
}

// Close cancels any pending parse.
func (e *Editor) Close() {
	e.debounce.Stop()
}
