// Package diagram defines the graph model produced by parsing an erdsync
// document, along with its JSON serialization.
//
// This package is the boundary between the synchronization core and every
// consumer of the model: renderers, the HTTP API, the language server and
// the terminal UI all work with [Model], [Node] and [Link].
//
// # Core Types
//
//   - [Model]: ordered node and link lists for one parse pass
//   - [Node]: a positioned vertex (entity, relationship, attribute, ...)
//   - [Link]: an edge between two node ids with an optional label
//   - [Kind]: closed set of node kinds
//   - [Style]: solid or double (total participation) link stroke
//
// # Serialization
//
// Models use a simple node-link JSON format:
//
//	{
//	  "nodes": [{"id": "A", "kind": "entity", "label": "A", "x": 10, "y": 20, "origin_line": 0}],
//	  "links": [{"source": "A", "target": "R", "label": "1", "style": "solid"}]
//	}
//
// Common operations:
//
//	data, _ := diagram.MarshalModel(m)     // Model → []byte
//	m, _ := diagram.ReadModel(r)           // io.Reader → Model
//	diagram.WriteModelFile(m, "out.json")  // Model → File
//
// # Dangling Links
//
// A [Link] may reference an id that no [Node] carries. Such links are kept in
// the model; consumers that need both endpoints use [Model.ResolvedLinks].
//
// # Concurrency
//
// A Model is a value rebuilt on every parse. It is safe for concurrent reads;
// callers that mutate node positions (drag feedback) must synchronize.
package diagram
