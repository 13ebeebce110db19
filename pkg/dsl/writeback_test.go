package dsl

import (
	"strings"
	"testing"
)

func TestSetCoords(t *testing.T) {
	tests := []struct {
		line string
		x, y float64
		want string
	}{
		{"ent A", 1, 2, "ent A (1, 2)"},
		{"ent A (10, 20)", 15, 25, "ent A (15, 25)"},
		{"ent A   ", 1, 2, "ent A (1, 2)"},
		{"att Name (3, 4) -> A", 5, 6, "att Name  -> A (5, 6)"},
		{"ent A", -3.5, 2.4, "ent A (-4, 2)"},
		{"ent A", 2.5, -2.5, "ent A (3, -3)"},
		{"  ent A", 0, 0, "  ent A (0, 0)"},
		{"ent A (99999999999999999999, 1)", 5, 6, "ent A (5, 6)"},
		{"ent A (1, -99999999999999999999) x", 5, 6, "ent A  x (5, 6)"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := SetCoords(tt.line, tt.x, tt.y); got != tt.want {
				t.Errorf("SetCoords(%q, %v, %v) = %q, want %q", tt.line, tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestWriteBackScenario(t *testing.T) {
	doc := NewDocument("ent A (10, 20)\nent B (30, 40)")

	out, ok := WriteBack(doc, 0, 15, 25)
	if !ok {
		t.Fatal("WriteBack() reported a stale line")
	}
	if want := "ent A (15, 25)\nent B (30, 40)"; out.String() != want {
		t.Errorf("WriteBack() = %q, want %q", out.String(), want)
	}
	if want := "ent A (10, 20)\nent B (30, 40)"; doc.String() != want {
		t.Errorf("input document changed to %q", doc.String())
	}
}

func TestWriteBackOverflowingPair(t *testing.T) {
	doc := NewDocument("ent A (99999999999999999999, 1)")

	out, ok := WriteBack(doc, 0, 5, 6)
	if !ok {
		t.Fatal("WriteBack() reported a stale line")
	}
	if want := "ent A (5, 6)"; out.String() != want {
		t.Errorf("WriteBack() = %q, want %q", out.String(), want)
	}

	n := ParseString(out.String(), Options{}).Model.NodeByID("A")
	if n == nil {
		t.Fatal("node A lost after write-back")
	}
	if n.X != 5 || n.Y != 6 || n.Placed {
		t.Errorf("re-parsed A = (%v, %v) placed=%v, want (5, 6) placed=false", n.X, n.Y, n.Placed)
	}
}

func TestWriteBackRoundTrip(t *testing.T) {
	text := "// employees\nent A\nrel R (5, 5)\natt Name -> A\nlink A R \"1\"\nspec -> A"
	res := ParseString(text, Options{})

	for _, n := range res.Model.Nodes {
		doc, ok := WriteBack(NewDocument(text), n.OriginLine, 123, -45)
		if !ok {
			t.Fatalf("WriteBack(%s) reported a stale line", n.ID)
		}

		moved := ParseString(doc.String(), Options{}).Model.NodeByID(n.ID)
		if moved == nil {
			t.Fatalf("id %q did not survive write-back", n.ID)
		}
		if moved.X != 123 || moved.Y != -45 || moved.Placed {
			t.Errorf("%s = (%v, %v) placed=%v, want (123, -45) placed=false", n.ID, moved.X, moved.Y, moved.Placed)
		}
	}
}

func TestWriteBackCurrentPositionIsStable(t *testing.T) {
	texts := []string{
		"// employees\nent A\nrel R (5, 5)\natt Name -> A\nlink A R \"1\"\nspec -> A",
		"ent X\nent X\nunion -> X\nkey_att Id (-3, 7) -> X",
		"weak_ent W\n\nident_rel H\n  // note\nmultivalued_attribute Phone -> W",
	}
	for _, text := range texts {
		res := ParseString(text, Options{})
		for _, n := range res.Model.Nodes {
			doc, ok := WriteBack(NewDocument(text), n.OriginLine, n.X, n.Y)
			if !ok {
				t.Fatalf("WriteBack(%s) reported a stale line", n.ID)
			}

			again := ParseString(doc.String(), Options{}).Model
			got := again.NodeByID(n.ID)
			if got == nil {
				t.Fatalf("id %q did not survive write-back in %q", n.ID, text)
			}
			if got.X != n.X || got.Y != n.Y {
				t.Errorf("%s moved from (%v, %v) to (%v, %v) in %q", n.ID, n.X, n.Y, got.X, got.Y, text)
			}

			// Writing the same position twice changes nothing further.
			twice, _ := WriteBack(doc, n.OriginLine, n.X, n.Y)
			if twice.String() != doc.String() {
				t.Errorf("second write-back of %s changed %q to %q", n.ID, doc.String(), twice.String())
			}
		}
	}
}

func TestWriteBackOnlyTouchesTargetLine(t *testing.T) {
	text := "ent A (1, 2)\n  // comment  \nrel R\t\nent B"
	before := NewDocument(text)

	after, ok := WriteBack(before, 2, 7, 8)
	if !ok {
		t.Fatal("WriteBack() reported a stale line")
	}
	if after.Len() != before.Len() {
		t.Fatalf("Len() = %d, want %d", after.Len(), before.Len())
	}
	for i := range before {
		want := before[i]
		if i == 2 {
			want = "rel R (7, 8)"
		}
		if after[i] != want {
			t.Errorf("line %d = %q, want %q", i, after[i], want)
		}
	}
}

func TestWriteBackStale(t *testing.T) {
	doc := NewDocument("ent A\nent B")
	for _, line := range []int{-1, 2, 50} {
		out, ok := WriteBack(doc, line, 1, 1)
		if ok || out.String() != doc.String() {
			t.Errorf("WriteBack(line %d) = %q, %v, want unchanged and false", line, out.String(), ok)
		}
	}
}

func TestMoveNode(t *testing.T) {
	doc := NewDocument("ent A\natt Name -> A")
	m := Parse(doc, Options{}).Model

	out, ok := MoveNode(doc, &m, "Name_1", 40, 50)
	if want := "ent A\natt Name -> A (40, 50)"; !ok || out.String() != want {
		t.Errorf("MoveNode(Name_1) = %q, %v, want %q, true", out.String(), ok, want)
	}

	out, ok = MoveNode(doc, &m, "missing", 1, 1)
	if ok || out.String() != doc.String() {
		t.Errorf("MoveNode(missing) = %q, %v, want unchanged and false", out.String(), ok)
	}
}

func TestMoveNodeAfterLinesRemoved(t *testing.T) {
	doc := NewDocument("ent A\nent B\nent C")
	m := Parse(doc, Options{}).Model

	out, ok := MoveNode(NewDocument("ent A"), &m, "C", 1, 1)
	if ok || out.String() != "ent A" {
		t.Errorf("MoveNode(C) = %q, %v, want %q, false", out.String(), ok, "ent A")
	}
}

func TestPin(t *testing.T) {
	doc := NewDocument("ent A\nent B (1, 1)\n// note\natt x -> A")
	m := Parse(doc, Options{}).Model

	pinned, n := Pin(doc, &m)
	if n != 2 {
		t.Errorf("Pin() rewrote %d lines, want 2", n)
	}
	if pinned[1] != "ent B (1, 1)" || pinned[2] != "// note" {
		t.Errorf("Pin() touched lines without auto-placed nodes: %q", pinned.String())
	}
	if !strings.HasSuffix(pinned[0], ")") {
		t.Errorf("line 0 = %q, want pinned coordinates", pinned[0])
	}

	again := Parse(pinned, Options{}).Model
	for i := range m.Nodes {
		got, want := again.Nodes[i], m.Nodes[i]
		if got.X != want.X || got.Y != want.Y || got.Placed {
			t.Errorf("%s = (%v, %v) placed=%v, want (%v, %v) placed=false", got.ID, got.X, got.Y, got.Placed, want.X, want.Y)
		}
	}

	// An auto-placed node inserted above no longer shifts pinned ones.
	shifted := Parse(NewDocument("ent Z\n"+pinned.String()), Options{}).Model
	if shifted.Nodes[1].X != again.Nodes[0].X {
		t.Errorf("pinned A shifted to x=%v, want %v", shifted.Nodes[1].X, again.Nodes[0].X)
	}
}
