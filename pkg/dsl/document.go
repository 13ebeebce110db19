package dsl

import "strings"

// Document is the authoritative text of a diagram as an ordered list of
// lines. Line indices are zero-based.
type Document []string

// NewDocument splits text on newlines. NewDocument(text).String() == text.
func NewDocument(text string) Document {
	return Document(strings.Split(text, "\n"))
}

// String joins the lines back into text.
func (d Document) String() string {
	return strings.Join(d, "\n")
}

// Len returns the number of lines.
func (d Document) Len() int { return len(d) }

// Line returns the line at index i and whether i is in range.
func (d Document) Line(i int) (string, bool) {
	if i < 0 || i >= len(d) {
		return "", false
	}
	return d[i], true
}

// Clone returns a copy that shares no storage with d.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	copy(out, d)
	return out
}

// Replace returns a copy of d with line i set to s. The receiver is not
// modified. It reports false, returning d unchanged, when i is out of range.
func (d Document) Replace(i int, s string) (Document, bool) {
	if i < 0 || i >= len(d) {
		return d, false
	}
	out := d.Clone()
	out[i] = s
	return out, true
}
