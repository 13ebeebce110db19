package dsl

import (
	"regexp"
	"strconv"
	"strings"
)

// CommentPrefix starts a line comment.
const CommentPrefix = "//"

// coordRe matches "(x, y)" with optional minus signs and inner whitespace.
var coordRe = regexp.MustCompile(`\(\s*(-?\d+)\s*,\s*(-?\d+)\s*\)`)

// Line is the classification of one raw document line.
type Line struct {
	// Skip is true for blank and comment lines.
	Skip bool

	HasCoords bool
	X, Y      float64

	// Remainder is the trimmed line with the coordinate pair removed.
	Remainder string
}

// ClassifyLine trims raw, skips blank and comment lines, and extracts the
// first coordinate pair. Only the first match is honored.
func ClassifyLine(raw string) Line {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, CommentPrefix) {
		return Line{Skip: true}
	}

	start, end, found := matchCoords(s)
	if !found {
		return Line{Remainder: s}
	}
	rest := strings.TrimSpace(s[:start] + s[end:])
	x, y, ok := parseCoords(s[start:end])
	if !ok {
		return Line{Remainder: rest}
	}
	return Line{
		HasCoords: true,
		X:         x,
		Y:         y,
		Remainder: rest,
	}
}

// matchCoords returns the byte range of the first coordinate pair in s.
func matchCoords(s string) (start, end int, found bool) {
	m := coordRe.FindStringIndex(s)
	if m == nil {
		return 0, 0, false
	}
	return m[0], m[1], true
}

// parseCoords converts a matched pair. Integers that overflow report false;
// the pair still counts as matched for stripping.
func parseCoords(pair string) (x, y float64, ok bool) {
	m := coordRe.FindStringSubmatch(pair)
	if m == nil {
		return 0, 0, false
	}
	xi, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	yi, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return float64(xi), float64(yi), true
}
