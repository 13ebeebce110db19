package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Lookup
// =============================================================================

// NodeByID returns a pointer into m.Nodes for the node with the given id,
// or nil if there is none.
func (m *Model) NodeByID(id string) *Node {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return &m.Nodes[i]
		}
	}
	return nil
}

// Has reports whether a node with the given id exists.
func (m *Model) Has(id string) bool {
	return m.NodeByID(id) != nil
}

// ResolvedLinks returns the links whose endpoints both exist in m.Nodes,
// preserving declaration order. Dangling links are skipped, not reported.
func (m *Model) ResolvedLinks() []Link {
	ids := m.idSet()
	out := make([]Link, 0, len(m.Links))
	for _, l := range m.Links {
		if ids[l.Source] && ids[l.Target] {
			out = append(out, l)
		}
	}
	return out
}

// Stats counts nodes, links, dangling links and auto-placed nodes.
func (m *Model) Stats() Stats {
	ids := m.idSet()
	s := Stats{Nodes: len(m.Nodes), Links: len(m.Links)}
	for _, l := range m.Links {
		if !ids[l.Source] || !ids[l.Target] {
			s.Dangling++
		}
	}
	for _, n := range m.Nodes {
		if n.Placed {
			s.Placed++
		}
	}
	return s
}

// Clone returns a deep copy of m so callers can mutate positions freely.
func (m Model) Clone() Model {
	out := Model{
		Nodes: make([]Node, len(m.Nodes)),
		Links: make([]Link, len(m.Links)),
	}
	copy(out.Nodes, m.Nodes)
	copy(out.Links, m.Links)
	return out
}

func (m *Model) idSet() map[string]bool {
	ids := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalModel converts a model to indented JSON bytes.
func MarshalModel(m Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteModel(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteModel writes a model as JSON to an io.Writer.
// Nil slices are written as empty arrays.
func WriteModel(m Model, w io.Writer) error {
	if m.Nodes == nil {
		m.Nodes = []Node{}
	}
	if m.Links == nil {
		m.Links = []Link{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteModelFile writes a model to a JSON file.
func WriteModelFile(m Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteModel(m, f)
}

// ReadModel decodes a JSON model from an io.Reader.
func ReadModel(r io.Reader) (Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Model{}, fmt.Errorf("decode: %w", err)
	}
	return m, nil
}

// ReadModelFile reads a JSON model file.
func ReadModelFile(path string) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return Model{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadModel(f)
}
