package pipeline

import (
	"context"

	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/errors"
	"github.com/matzehuels/erdsync/pkg/observability"
)

// Move parses text, writes (x, y) into the line that declares id and
// returns the new text. Unlike [dsl.MoveNode] it reports problems as
// errors, for callers that answer a request.
func Move(ctx context.Context, text, id string, x, y float64, opts dsl.Options) (string, error) {
	if err := errors.ValidateNodeID(id); err != nil {
		return "", err
	}
	if err := errors.ValidateCoordinate("x", x); err != nil {
		return "", err
	}
	if err := errors.ValidateCoordinate("y", y); err != nil {
		return "", err
	}

	doc := dsl.NewDocument(text)
	res := dsl.Parse(doc, opts)
	n := res.Model.NodeByID(id)
	if n == nil {
		observability.Sync().OnWriteBack(ctx, id, false)
		return "", errors.New(errors.ErrCodeNodeNotFound, "no node %q", id)
	}
	out, ok := dsl.WriteBack(doc, n.OriginLine, x, y)
	observability.Sync().OnWriteBack(ctx, id, ok)
	if !ok {
		return "", errors.New(errors.ErrCodeStaleLine, "line %d for node %q no longer exists", n.OriginLine+1, id)
	}
	return out.String(), nil
}

// MoveLine writes (x, y) into one line of text, for callers that held on to
// a node's origin line across edits. A line past the end of text yields a
// STALE_LINE error and text is not modified.
func MoveLine(ctx context.Context, text string, line int, x, y float64) (string, error) {
	if err := errors.ValidateCoordinate("x", x); err != nil {
		return "", err
	}
	if err := errors.ValidateCoordinate("y", y); err != nil {
		return "", err
	}
	out, ok := dsl.WriteBack(dsl.NewDocument(text), line, x, y)
	if !ok {
		return "", errors.New(errors.ErrCodeStaleLine, "line %d no longer exists", line+1)
	}
	return out.String(), nil
}

// Pin writes every auto-placed position into text and returns the new text
// and how many lines changed.
func Pin(text string, opts dsl.Options) (string, int) {
	doc := dsl.NewDocument(text)
	res := dsl.Parse(doc, opts)
	out, n := dsl.Pin(doc, &res.Model)
	return out.String(), n
}
