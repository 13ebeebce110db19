package dsl

import (
	"strings"

	"github.com/matzehuels/erdsync/pkg/diagram"
)

// Command keywords.
const (
	cmdLink  = "link"
	cmdSpec  = "spec"
	cmdUnion = "union"
)

// nodeCommands maps node-declaring keywords to the kind they declare.
var nodeCommands = map[string]diagram.Kind{
	"ent":                   diagram.KindEntity,
	"weak_ent":              diagram.KindWeakEntity,
	"rel":                   diagram.KindRelationship,
	"ident_rel":             diagram.KindIdentifyingRelationship,
	"att":                   diagram.KindAttribute,
	"key_att":               diagram.KindKeyAttribute,
	"derived_att":           diagram.KindDerivedAttribute,
	"multivalued_attribute": diagram.KindMultivaluedAttribute,
}

// Participation markers that select a double link.
var doubleMarkers = map[string]bool{
	"total":  true,
	"double": true,
}

// Statement is the classified form of one line. It is one of [NodeDecl],
// [HierarchyDecl], [LinkDecl] or [Ignored].
type Statement interface {
	statement()
}

// NodeDecl declares an entity, relationship or attribute node.
type NodeDecl struct {
	Kind  diagram.Kind
	Label string
	// Owner is the id after an inline "->", or empty.
	Owner string
}

// HierarchyDecl declares a specialization or union node.
type HierarchyDecl struct {
	Kind          diagram.Kind
	Discriminator string
	// Explicit is false when the discriminator was omitted and defaulted.
	Explicit bool
	// Superclass is the id after an inline "->", or empty.
	Superclass string
}

// LinkDecl connects two node ids.
type LinkDecl struct {
	Source string
	Target string
	Label  string
	Style  diagram.Style
}

// Ignored is a line that contributes nothing to the model.
type Ignored struct {
	Keyword string
	Reason  string
}

func (NodeDecl) statement()      {}
func (HierarchyDecl) statement() {}
func (LinkDecl) statement()      {}
func (Ignored) statement()       {}

// Reasons reported for ignored statements.
const (
	ReasonEmpty           = "empty statement"
	ReasonUnknownCommand  = "unknown command"
	ReasonMissingLabel    = "missing label"
	ReasonMissingEndpoint = "missing link endpoint"
)

// ParseStatement classifies a coordinate-stripped line by its first token.
// Unrecognized or incomplete input yields [Ignored], never an error.
func ParseStatement(remainder string) Statement {
	toks := Tokenize(remainder)
	if len(toks) == 0 {
		return Ignored{Reason: ReasonEmpty}
	}
	if toks[0].Kind != TokenWord {
		return Ignored{Keyword: toks[0].Literal, Reason: ReasonUnknownCommand}
	}

	keyword := strings.ToLower(toks[0].Literal)
	if kind, ok := nodeCommands[keyword]; ok {
		return parseNodeDecl(keyword, kind, toks)
	}
	switch keyword {
	case cmdSpec:
		return parseHierarchyDecl(diagram.KindSpecialization, diagram.DiscriminatorDisjoint, toks)
	case cmdUnion:
		return parseHierarchyDecl(diagram.KindUnion, diagram.DiscriminatorUnion, toks)
	case cmdLink:
		return parseLinkDecl(toks)
	}
	return Ignored{Keyword: keyword, Reason: ReasonUnknownCommand}
}

func parseNodeDecl(keyword string, kind diagram.Kind, toks []Token) Statement {
	if len(toks) < 2 || toks[1].Kind != TokenWord {
		return Ignored{Keyword: keyword, Reason: ReasonMissingLabel}
	}
	return NodeDecl{
		Kind:  kind,
		Label: toks[1].Literal,
		Owner: arrowTarget(toks, 2),
	}
}

func parseHierarchyDecl(kind diagram.Kind, fallback string, toks []Token) Statement {
	decl := HierarchyDecl{Kind: kind, Discriminator: fallback}
	arrowAt := 1
	if len(toks) > 1 && toks[1].Kind == TokenWord {
		decl.Discriminator = toks[1].Literal
		decl.Explicit = true
		arrowAt = 2
	}
	decl.Superclass = arrowTarget(toks, arrowAt)
	return decl
}

func parseLinkDecl(toks []Token) Statement {
	if len(toks) < 3 || toks[1].Kind != TokenWord || toks[2].Kind != TokenWord {
		return Ignored{Keyword: cmdLink, Reason: ReasonMissingEndpoint}
	}
	decl := LinkDecl{
		Source: toks[1].Literal,
		Target: toks[2].Literal,
		Style:  diagram.StyleSolid,
	}
	labeled := false
	for _, t := range toks[3:] {
		switch t.Kind {
		case TokenQuoted:
			if !labeled {
				decl.Label = t.Literal
				labeled = true
			}
		case TokenBracket:
			if doubleMarkers[strings.ToLower(t.Literal)] {
				decl.Style = diagram.StyleDouble
			}
		}
	}
	return decl
}

// arrowTarget returns the word following an arrow at toks[i], or "".
func arrowTarget(toks []Token, i int) string {
	if i+1 < len(toks) && toks[i].Kind == TokenArrow && toks[i+1].Kind == TokenWord {
		return toks[i+1].Literal
	}
	return ""
}
