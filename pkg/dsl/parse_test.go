package dsl

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/erdsync/pkg/diagram"
	"github.com/matzehuels/erdsync/pkg/layout"
)

func parse(text string) *Result {
	return ParseString(text, Options{})
}

func TestParseExplicitCoordinates(t *testing.T) {
	res := parse("ent A (10, 20)\nent B (30, 40)\nrel R (20,30)\nlink A R \"1\"\nlink B R \"N\"")
	m := res.Model

	wantNodes := []diagram.Node{
		{ID: "A", Kind: diagram.KindEntity, Label: "A", X: 10, Y: 20, OriginLine: 0},
		{ID: "B", Kind: diagram.KindEntity, Label: "B", X: 30, Y: 40, OriginLine: 1},
		{ID: "R", Kind: diagram.KindRelationship, Label: "R", X: 20, Y: 30, OriginLine: 2},
	}
	if !reflect.DeepEqual(m.Nodes, wantNodes) {
		t.Errorf("Nodes = %+v, want %+v", m.Nodes, wantNodes)
	}

	wantLinks := []diagram.Link{
		{Source: "A", Target: "R", Label: "1", Style: diagram.StyleSolid},
		{Source: "B", Target: "R", Label: "N", Style: diagram.StyleSolid},
	}
	if !reflect.DeepEqual(m.Links, wantLinks) {
		t.Errorf("Links = %+v, want %+v", m.Links, wantLinks)
	}
	if len(res.Ignored) != 0 {
		t.Errorf("Ignored = %+v, want none", res.Ignored)
	}
}

func TestParseAttributeShorthand(t *testing.T) {
	m := parse("att Name -> A").Model

	if len(m.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(m.Nodes))
	}
	n := m.Nodes[0]
	if n.ID != "Name_0" {
		t.Errorf("ID = %q, want %q", n.ID, "Name_0")
	}
	if n.Kind != diagram.KindAttribute {
		t.Errorf("Kind = %v, want %v", n.Kind, diagram.KindAttribute)
	}
	if !n.Placed {
		t.Error("Placed = false, want true")
	}

	x, y := layout.NewSpiral(layout.Config{}).Next()
	if n.X != x || n.Y != y {
		t.Errorf("position = (%v, %v), want first spiral slot (%v, %v)", n.X, n.Y, x, y)
	}

	want := []diagram.Link{{Source: "A", Target: "Name_0", Style: diagram.StyleSolid}}
	if !reflect.DeepEqual(m.Links, want) {
		t.Errorf("Links = %+v, want %+v", m.Links, want)
	}
}

func TestParseDuplicateLabels(t *testing.T) {
	m := parse("ent X\nent X").Model

	if len(m.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(m.Nodes))
	}
	if m.Nodes[0].ID != "X" || m.Nodes[1].ID != "X_1" {
		t.Errorf("ids = %q, %q, want X, X_1", m.Nodes[0].ID, m.Nodes[1].ID)
	}

	s := layout.NewSpiral(layout.Config{})
	for i, n := range m.Nodes {
		x, y := s.Next()
		if n.X != x || n.Y != y {
			t.Errorf("node %d at (%v, %v), want spiral slot (%v, %v)", i, n.X, n.Y, x, y)
		}
	}
}

func TestParseTotalParticipation(t *testing.T) {
	m := parse(`link EMPLOYEE REL "N" [total]`).Model

	if len(m.Nodes) != 0 {
		t.Errorf("len(Nodes) = %d, want 0", len(m.Nodes))
	}
	if len(m.Links) != 1 {
		t.Fatalf("len(Links) = %d, want 1", len(m.Links))
	}
	if m.Links[0].Style != diagram.StyleDouble || m.Links[0].Label != "N" {
		t.Errorf("Link = %+v, want double link labelled N", m.Links[0])
	}
}

func TestParseCommentsAndBlanks(t *testing.T) {
	res := parse("// header\n\n   \n  // indented\n")

	if len(res.Model.Nodes) != 0 || len(res.Model.Links) != 0 || len(res.Ignored) != 0 {
		t.Errorf("parse = %d nodes, %d links, %d ignored, want all zero",
			len(res.Model.Nodes), len(res.Model.Links), len(res.Ignored))
	}
}

func TestParseHierarchy(t *testing.T) {
	m := parse("ent Person (0, 0)\nspec o -> Person (10, 10)\nunion -> Person\nspec").Model

	if len(m.Nodes) != 4 {
		t.Fatalf("len(Nodes) = %d, want 4", len(m.Nodes))
	}

	tests := []struct {
		i     int
		id    string
		kind  diagram.Kind
		discr string
	}{
		{1, "o", diagram.KindSpecialization, "o"},
		{2, "spec_2", diagram.KindUnion, "u"},
		{3, "spec_3", diagram.KindSpecialization, "d"},
	}
	for _, tt := range tests {
		n := m.Nodes[tt.i]
		if n.ID != tt.id || n.Kind != tt.kind || n.Discriminator != tt.discr {
			t.Errorf("Nodes[%d] = {%s %v %s}, want {%s %v %s}", tt.i, n.ID, n.Kind, n.Discriminator, tt.id, tt.kind, tt.discr)
		}
	}

	want := []diagram.Link{
		{Source: "Person", Target: "o", Style: diagram.StyleDouble},
		{Source: "Person", Target: "spec_2", Style: diagram.StyleDouble},
	}
	if !reflect.DeepEqual(m.Links, want) {
		t.Errorf("Links = %+v, want %+v", m.Links, want)
	}
}

func TestParseIDsUnique(t *testing.T) {
	docs := []string{
		"ent A\nent A\nent A\natt A -> A\natt A -> A",
		"ent X_1\nent X\nent X",
		"spec\nspec\nent spec_0\nunion\nspec d\nspec d",
		"att Name -> A\nent Name_0\natt Name -> B",
	}
	for _, text := range docs {
		m := parse(text).Model
		seen := make(map[string]bool)
		for _, n := range m.Nodes {
			if seen[n.ID] {
				t.Errorf("duplicate id %q in %q", n.ID, text)
			}
			seen[n.ID] = true
		}
	}
}

func TestParseAttributeNonAliasing(t *testing.T) {
	m := parse("ent A\nent B\natt Name -> A\natt Name -> B").Model

	if len(m.Nodes) != 4 {
		t.Fatalf("len(Nodes) = %d, want 4", len(m.Nodes))
	}
	if m.Nodes[2].ID != "Name_2" || m.Nodes[3].ID != "Name_3" {
		t.Errorf("attribute ids = %q, %q, want Name_2, Name_3", m.Nodes[2].ID, m.Nodes[3].ID)
	}
}

func TestParseDeterministic(t *testing.T) {
	text := "ent A\nrel R\natt x -> A\nent B (5, 5)\nspec -> A\nweak_ent W"
	a, b := parse(text).Model, parse(text).Model
	if !reflect.DeepEqual(a, b) {
		t.Errorf("two parses differ:\n%+v\n%+v", a, b)
	}
}

func TestParseLayoutOrderDependence(t *testing.T) {
	before := parse("ent A\nent B").Model
	after := parse("ent Z\nent A\nent B").Model

	if before.Nodes[0].X == after.Nodes[1].X {
		t.Error("A should shift when an earlier auto-placed node is inserted")
	}
	if before.Nodes[1].X != after.Nodes[1].X || before.Nodes[1].Y != after.Nodes[1].Y {
		t.Errorf("A = (%v, %v), want the old second slot (%v, %v)",
			after.Nodes[1].X, after.Nodes[1].Y, before.Nodes[1].X, before.Nodes[1].Y)
	}
}

func TestParseExplicitCoordinatesDoNotAdvanceSpiral(t *testing.T) {
	a := parse("ent A").Model
	b := parse("ent P (1, 1)\nent A").Model
	if a.Nodes[0].X != b.Nodes[1].X || a.Nodes[0].Y != b.Nodes[1].Y {
		t.Errorf("A = (%v, %v), want (%v, %v)", b.Nodes[1].X, b.Nodes[1].Y, a.Nodes[0].X, a.Nodes[0].Y)
	}
}

func TestParseLeniency(t *testing.T) {
	base := "ent A (1, 2)\nrel R\nlink A R \"1\""
	clean := parse(base)

	lines := strings.Split(base, "\n")
	for i := 0; i <= len(lines); i++ {
		withJunk := append(append(append([]string{}, lines[:i]...), "bogus A B C"), lines[i:]...)
		res := parse(strings.Join(withJunk, "\n"))

		if len(res.Model.Nodes) != len(clean.Model.Nodes) {
			t.Fatalf("junk at %d: len(Nodes) = %d, want %d", i, len(res.Model.Nodes), len(clean.Model.Nodes))
		}
		for j, want := range clean.Model.Nodes {
			got := res.Model.Nodes[j]
			if got.ID != want.ID || got.X != want.X || got.Y != want.Y {
				t.Errorf("junk at %d: node %d = {%s %v %v}, want {%s %v %v}", i, j, got.ID, got.X, got.Y, want.ID, want.X, want.Y)
			}
		}
		if !reflect.DeepEqual(res.Model.Links, clean.Model.Links) {
			t.Errorf("junk at %d: Links = %+v, want %+v", i, res.Model.Links, clean.Model.Links)
		}

		if len(res.Ignored) != 1 {
			t.Fatalf("junk at %d: len(Ignored) = %d, want 1", i, len(res.Ignored))
		}
		if res.Ignored[0].Line != i || res.Ignored[0].Reason != ReasonUnknownCommand {
			t.Errorf("junk at %d: Ignored = %+v", i, res.Ignored[0])
		}
	}
}

func TestParseDanglingLink(t *testing.T) {
	res := parse("ent REAL (0, 0)\nlink GHOST REAL \"1\"")
	m := res.Model

	if m.NodeByID("GHOST") != nil {
		t.Error("NodeByID(GHOST) != nil")
	}
	if len(m.Links) != 1 {
		t.Errorf("len(Links) = %d, want 1; dangling links are retained", len(m.Links))
	}
	if got := m.ResolvedLinks(); len(got) != 0 {
		t.Errorf("ResolvedLinks() = %+v, want none", got)
	}
	if got := m.Stats().Dangling; got != 1 {
		t.Errorf("Stats().Dangling = %d, want 1", got)
	}
}

func TestParseCoordinatesAnywhere(t *testing.T) {
	m := parse("att (7, 8) Name -> A").Model
	if len(m.Nodes) != 1 || len(m.Links) != 1 {
		t.Fatalf("parse = %d nodes, %d links, want 1, 1", len(m.Nodes), len(m.Links))
	}
	n := m.Nodes[0]
	if n.ID != "Name_0" || n.X != 7 || n.Y != 8 {
		t.Errorf("node = {%s %v %v}, want {Name_0 7 8}", n.ID, n.X, n.Y)
	}
}

func TestParseOverflowingCoordinates(t *testing.T) {
	m := parse("ent A (99999999999999999999, 1)").Model
	if len(m.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(m.Nodes))
	}
	n := m.Nodes[0]
	if n.Label != "A" {
		t.Errorf("Label = %q, want %q", n.Label, "A")
	}
	if !n.Placed {
		t.Error("Placed = false, want true for an unreadable pair")
	}
}

func TestParseAllNodeKinds(t *testing.T) {
	var b strings.Builder
	keywords := []string{"ent", "weak_ent", "rel", "ident_rel", "att", "key_att", "derived_att", "multivalued_attribute"}
	for i, kw := range keywords {
		fmt.Fprintf(&b, "%s N%d (%d, %d)\n", kw, i, i, i)
	}
	m := parse(b.String()).Model

	want := []diagram.Kind{
		diagram.KindEntity,
		diagram.KindWeakEntity,
		diagram.KindRelationship,
		diagram.KindIdentifyingRelationship,
		diagram.KindAttribute,
		diagram.KindKeyAttribute,
		diagram.KindDerivedAttribute,
		diagram.KindMultivaluedAttribute,
	}
	if len(m.Nodes) != len(want) {
		t.Fatalf("len(Nodes) = %d, want %d", len(m.Nodes), len(want))
	}
	for i, k := range want {
		if m.Nodes[i].Kind != k {
			t.Errorf("Nodes[%d].Kind = %v, want %v", i, m.Nodes[i].Kind, k)
		}
		if m.Nodes[i].Placed {
			t.Errorf("Nodes[%d].Placed = true, want false", i)
		}
	}
}
