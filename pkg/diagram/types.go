package diagram

// =============================================================================
// Kind - Node Variants
// =============================================================================

// Kind identifies what a node represents in the diagram.
type Kind string

// Node kinds.
const (
	KindEntity                  Kind = "entity"
	KindWeakEntity              Kind = "weak_entity"
	KindRelationship            Kind = "relationship"
	KindIdentifyingRelationship Kind = "identifying_relationship"
	KindAttribute               Kind = "attribute"
	KindKeyAttribute            Kind = "key_attribute"
	KindMultivaluedAttribute    Kind = "multivalued_attribute"
	KindDerivedAttribute        Kind = "derived_attribute"
	KindSpecialization          Kind = "specialization"
	KindUnion                   Kind = "union"
)

// Kinds lists every node kind in declaration order.
var Kinds = []Kind{
	KindEntity,
	KindWeakEntity,
	KindRelationship,
	KindIdentifyingRelationship,
	KindAttribute,
	KindKeyAttribute,
	KindMultivaluedAttribute,
	KindDerivedAttribute,
	KindSpecialization,
	KindUnion,
}

// IsAttribute reports whether k is one of the attribute kinds.
func (k Kind) IsAttribute() bool {
	switch k {
	case KindAttribute, KindKeyAttribute, KindMultivaluedAttribute, KindDerivedAttribute:
		return true
	}
	return false
}

// IsHierarchy reports whether k is a specialization or union construct.
func (k Kind) IsHierarchy() bool {
	return k == KindSpecialization || k == KindUnion
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// =============================================================================
// Style - Link Stroke
// =============================================================================

// Style selects how a link is drawn.
type Style string

// Link styles. StyleDouble marks total participation.
const (
	StyleSolid  Style = "solid"
	StyleDouble Style = "double"
)

// Discriminator defaults for hierarchy nodes.
const (
	DiscriminatorDisjoint    = "d"
	DiscriminatorOverlapping = "o"
	DiscriminatorUnion       = "u"
)

// =============================================================================
// Node, Link, Model
// =============================================================================

// Node is a positioned vertex of the diagram.
//
// OriginLine is the zero-based index of the document line that declared the
// node at parse time. It is a position, not a durable key: inserting or
// deleting lines above it invalidates it.
type Node struct {
	ID            string  `json:"id" bson:"id"`
	Kind          Kind    `json:"kind" bson:"kind"`
	Label         string  `json:"label" bson:"label"`
	X             float64 `json:"x" bson:"x"`
	Y             float64 `json:"y" bson:"y"`
	Discriminator string  `json:"discriminator,omitempty" bson:"discriminator,omitempty"`
	OriginLine    int     `json:"origin_line" bson:"origin_line"`
	// Placed is true when the position came from the spiral generator
	// rather than explicit coordinates in the text.
	Placed bool `json:"placed,omitempty" bson:"placed,omitempty"`
}

// Link is a directed edge between two node ids.
type Link struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Style  Style  `json:"style" bson:"style"`
}

// IsDouble reports whether the link marks total participation.
func (l Link) IsDouble() bool { return l.Style == StyleDouble }

// Model is the node and link lists of one parse pass, in declaration order.
type Model struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Link `json:"links" bson:"links"`
}

// Stats summarizes a model for logging and display.
type Stats struct {
	Nodes    int
	Links    int
	Dangling int
	Placed   int
}
