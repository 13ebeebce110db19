package dsl

import (
	"reflect"
	"testing"

	"github.com/matzehuels/erdsync/pkg/diagram"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Token
	}{
		{"empty", "", nil},
		{"words", "ent A", []Token{{TokenWord, "ent"}, {TokenWord, "A"}}},
		{"arrow", "att Name -> A", []Token{
			{TokenWord, "att"}, {TokenWord, "Name"}, {TokenArrow, "->"}, {TokenWord, "A"},
		}},
		{"quoted with spaces", `link A B "works for"`, []Token{
			{TokenWord, "link"}, {TokenWord, "A"}, {TokenWord, "B"}, {TokenQuoted, "works for"},
		}},
		{"bracket", "link A B [ total ]", []Token{
			{TokenWord, "link"}, {TokenWord, "A"}, {TokenWord, "B"}, {TokenBracket, "total"},
		}},
		{"adjacent quote", `link A B"N"[total]`, []Token{
			{TokenWord, "link"}, {TokenWord, "A"}, {TokenWord, "B"}, {TokenQuoted, "N"}, {TokenBracket, "total"},
		}},
		{"unterminated quote", `link A B "N`, []Token{
			{TokenWord, "link"}, {TokenWord, "A"}, {TokenWord, "B"}, {TokenQuoted, "N"},
		}},
		{"arrow glued to word is a word", "att Name ->A", []Token{
			{TokenWord, "att"}, {TokenWord, "Name"}, {TokenWord, "->A"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseStatement(t *testing.T) {
	tests := []struct {
		in   string
		want Statement
	}{
		{"ent A", NodeDecl{Kind: diagram.KindEntity, Label: "A"}},
		{"ENT A", NodeDecl{Kind: diagram.KindEntity, Label: "A"}},
		{"weak_ent Dep", NodeDecl{Kind: diagram.KindWeakEntity, Label: "Dep"}},
		{"rel Works", NodeDecl{Kind: diagram.KindRelationship, Label: "Works"}},
		{"ident_rel Has", NodeDecl{Kind: diagram.KindIdentifyingRelationship, Label: "Has"}},
		{"att Name -> A", NodeDecl{Kind: diagram.KindAttribute, Label: "Name", Owner: "A"}},
		{"key_att Id -> A", NodeDecl{Kind: diagram.KindKeyAttribute, Label: "Id", Owner: "A"}},
		{"derived_att Age -> A", NodeDecl{Kind: diagram.KindDerivedAttribute, Label: "Age", Owner: "A"}},
		{"multivalued_attribute Phone -> A", NodeDecl{Kind: diagram.KindMultivaluedAttribute, Label: "Phone", Owner: "A"}},
		{"att Name ->", NodeDecl{Kind: diagram.KindAttribute, Label: "Name"}},
		{"spec o -> Person", HierarchyDecl{Kind: diagram.KindSpecialization, Discriminator: "o", Explicit: true, Superclass: "Person"}},
		{"spec", HierarchyDecl{Kind: diagram.KindSpecialization, Discriminator: "d"}},
		{"union", HierarchyDecl{Kind: diagram.KindUnion, Discriminator: "u"}},
		{"union -> Owner", HierarchyDecl{Kind: diagram.KindUnion, Discriminator: "u", Superclass: "Owner"}},
		{`link A R "1"`, LinkDecl{Source: "A", Target: "R", Label: "1", Style: diagram.StyleSolid}},
		{`link EMPLOYEE REL "N" [total]`, LinkDecl{Source: "EMPLOYEE", Target: "REL", Label: "N", Style: diagram.StyleDouble}},
		{`link A B [double]`, LinkDecl{Source: "A", Target: "B", Style: diagram.StyleDouble}},
		{`link A B [TOTAL]`, LinkDecl{Source: "A", Target: "B", Style: diagram.StyleDouble}},
		{`link A B [partial]`, LinkDecl{Source: "A", Target: "B", Style: diagram.StyleSolid}},
		{`link A B "1" "2"`, LinkDecl{Source: "A", Target: "B", Label: "1", Style: diagram.StyleSolid}},
		{"link A", Ignored{Keyword: "link", Reason: ReasonMissingEndpoint}},
		{"ent", Ignored{Keyword: "ent", Reason: ReasonMissingLabel}},
		{`ent "A"`, Ignored{Keyword: "ent", Reason: ReasonMissingLabel}},
		{"table A", Ignored{Keyword: "table", Reason: ReasonUnknownCommand}},
		{`"quoted" first`, Ignored{Keyword: "quoted", Reason: ReasonUnknownCommand}},
		{"", Ignored{Reason: ReasonEmpty}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseStatement(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStatement(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver()

	steps := []struct {
		label    string
		kind     diagram.Kind
		explicit bool
		line     int
		want     string
	}{
		{"A", diagram.KindEntity, true, 0, "A"},
		{"A", diagram.KindEntity, true, 1, "A_1"},
		{"Name", diagram.KindAttribute, true, 2, "Name_2"},
		{"Name", diagram.KindKeyAttribute, true, 3, "Name_3"},
		{"d", diagram.KindSpecialization, false, 4, "spec_4"},
		{"d", diagram.KindSpecialization, true, 5, "d"},
		{"d", diagram.KindSpecialization, true, 6, "d_6"},
		{"u", diagram.KindUnion, false, 7, "spec_7"},
		{"Name_2", diagram.KindEntity, true, 8, "Name_2_8"},
	}

	for _, s := range steps {
		if got := r.Resolve(s.label, s.kind, s.explicit, s.line); got != s.want {
			t.Errorf("Resolve(%q, %s, line %d) = %q, want %q", s.label, s.kind, s.line, got, s.want)
		}
		if !r.Taken(s.want) {
			t.Errorf("Taken(%q) = false after Resolve", s.want)
		}
	}
}

func TestResolverSuffixCollision(t *testing.T) {
	r := NewResolver()
	r.Resolve("X_1", diagram.KindEntity, true, 0)
	r.Resolve("X", diagram.KindEntity, true, 0)

	if got := r.Resolve("X", diagram.KindEntity, true, 1); got != "X_1_1" {
		t.Errorf("Resolve() = %q, want %q", got, "X_1_1")
	}
}
