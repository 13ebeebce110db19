package dsl

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/matzehuels/erdsync/pkg/diagram"
)

// FormatCoords returns the canonical coordinate suffix " (x, y)" with both
// values rounded to the nearest integer, the same rounding the spiral uses.
func FormatCoords(x, y float64) string {
	return " (" + strconv.Itoa(roundInt(x)) + ", " + strconv.Itoa(roundInt(y)) + ")"
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

// SetCoords returns line with its first coordinate pair removed, trailing
// whitespace trimmed and the canonical suffix for (x, y) appended.
func SetCoords(line string, x, y float64) string {
	if start, end, found := matchCoords(line); found {
		line = line[:start] + line[end:]
	}
	return strings.TrimRightFunc(line, unicode.IsSpace) + FormatCoords(x, y)
}

// WriteBack returns a copy of doc in which only line has its coordinates
// replaced by (x, y). If line is out of range for doc it returns doc
// unchanged and false; a stale index is not an error.
func WriteBack(doc Document, line int, x, y float64) (Document, bool) {
	raw, ok := doc.Line(line)
	if !ok {
		return doc, false
	}
	return doc.Replace(line, SetCoords(raw, x, y))
}

// MoveNode writes the position of the node with the given id back to the
// line that declared it. Unknown ids and stale lines are no-ops.
func MoveNode(doc Document, m *diagram.Model, id string, x, y float64) (Document, bool) {
	n := m.NodeByID(id)
	if n == nil {
		return doc, false
	}
	return WriteBack(doc, n.OriginLine, x, y)
}

// Pin writes the current position of every auto-placed node into doc so
// later edits no longer shift them. It returns the new document and the
// number of lines rewritten.
func Pin(doc Document, m *diagram.Model) (Document, int) {
	count := 0
	for _, n := range m.Nodes {
		if !n.Placed {
			continue
		}
		var ok bool
		if doc, ok = WriteBack(doc, n.OriginLine, n.X, n.Y); ok {
			count++
		}
	}
	return doc, count
}
