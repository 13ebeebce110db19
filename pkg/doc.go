// Package pkg provides the core libraries for erdsync, a line-oriented
// entity-relationship diagram language with text-to-model sync and position
// write-back.
//
// # Overview
//
// A document is plain text, one statement per line. Parsing yields a model
// of nodes and links; every node remembers the line that declared it, so a
// position dragged in a drawing can be written back into exactly that line.
// The pkg directory is organized as:
//
//  1. [dsl] - Tokenizer, statement parser, id resolution and write-back
//  2. [diagram] - Model types (nodes, links, kinds) and JSON serialization
//  3. [layout] - Spiral placement for nodes declared without coordinates
//  4. [editor] - Debounced live editing loop with drag and release
//  5. [pipeline] - Parse → render orchestration with artifact caching
//  6. [render] - Output formats; [render/nodelink] draws ER notation via Graphviz
//  7. [cache], [session] - Artifact cache and persisted editing sessions
//  8. [errors], [observability], [buildinfo] - Shared support code
//
// # Architecture
//
// The data flow through erdsync:
//
//	Document text
//	     ↓
//	[dsl] parse (coordinates, statements, unique ids, spiral fallback)
//	     ↓
//	[diagram] model
//	     ↓            ↘
//	[render]          [editor] drag → release → [dsl] write-back → text
//	     ↓
//	DOT/SVG/PNG/PDF/JSON
//
// # Quick Start
//
//	res := dsl.ParseString("ent EMPLOYEE (0, 0)\nrel WORKS\nlink EMPLOYEE WORKS \"N\"", dsl.Options{})
//	dot := nodelink.ToDOT(res.Model, nodelink.Options{})
//
//	text, err := pipeline.Move(ctx, src, "WORKS", 120, 40, dsl.Options{})
//
// Parsing never fails: lines that contribute nothing are reported in
// [dsl.Result.Ignored] and links to missing nodes are kept but not drawn.
//
// [dsl]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/dsl
// [diagram]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/diagram
// [layout]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/layout
// [editor]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/editor
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/session
// [errors]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/buildinfo
// [dsl.Result.Ignored]: https://pkg.go.dev/github.com/matzehuels/erdsync/pkg/dsl#Result
package pkg
