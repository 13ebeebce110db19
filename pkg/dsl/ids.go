package dsl

import (
	"strconv"

	"github.com/matzehuels/erdsync/pkg/diagram"
)

// hierarchyIDPrefix is the id base for spec/union nodes without an explicit
// discriminator. Union nodes share it.
const hierarchyIDPrefix = "spec_"

// Resolver allocates node ids for one parse pass. It is not safe for
// concurrent use.
type Resolver struct {
	taken map[string]bool
}

// NewResolver creates a resolver with no ids taken.
func NewResolver() *Resolver {
	return &Resolver{taken: make(map[string]bool)}
}

// Resolve returns a unique id for a node declared on the given line and
// reserves it.
//
// Attribute kinds always get label_line. Other kinds get label, or
// label_line if label is already taken. Hierarchy nodes without an explicit
// discriminator use spec_line as their label. Should the suffixed candidate
// itself be taken (a user literally declared "X_1"), the suffix is repeated
// until the id is free.
func (r *Resolver) Resolve(label string, kind diagram.Kind, explicit bool, line int) string {
	suffix := "_" + strconv.Itoa(line)

	base := label
	if kind.IsHierarchy() && !explicit {
		base = hierarchyIDPrefix + strconv.Itoa(line)
	}

	id := base
	if kind.IsAttribute() {
		id = base + suffix
	}
	for r.taken[id] {
		id += suffix
	}
	r.taken[id] = true
	return id
}

// Taken reports whether id has been allocated.
func (r *Resolver) Taken(id string) bool {
	return r.taken[id]
}
