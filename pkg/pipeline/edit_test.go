package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/errors"
)

func TestMove(t *testing.T) {
	ctx := context.Background()
	text := "ent A (1, 2)\nrel R\nlink A R \"1\""

	got, err := Move(ctx, text, "R", 100, 200, dsl.Options{})
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if want := "ent A (1, 2)\nrel R (100, 200)\nlink A R \"1\""; got != want {
		t.Errorf("Move() = %q, want %q", got, want)
	}
}

func TestMoveErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		id   string
		x, y float64
		code errors.Code
	}{
		{"unknown node", "GHOST", 1, 1, errors.ErrCodeNodeNotFound},
		{"empty id", "", 1, 1, errors.ErrCodeInvalidInput},
		{"nan", "A", math.NaN(), 1, errors.ErrCodeInvalidInput},
		{"huge", "A", 1, 1e12, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Move(ctx, "ent A", tt.id, tt.x, tt.y, dsl.Options{})
			if !errors.Is(err, tt.code) {
				t.Errorf("Move() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestMoveLine(t *testing.T) {
	ctx := context.Background()

	got, err := MoveLine(ctx, "ent A\nent B", 1, 3, 4)
	if err != nil {
		t.Fatalf("MoveLine() error = %v", err)
	}
	if got != "ent A\nent B (3, 4)" {
		t.Errorf("MoveLine() = %q", got)
	}

	if _, err := MoveLine(ctx, "ent A", 5, 0, 0); !errors.Is(err, errors.ErrCodeStaleLine) {
		t.Errorf("MoveLine() past end error = %v, want STALE_LINE", err)
	}
}

func TestPin(t *testing.T) {
	text := "ent A (0, 0)\nent B\n// note\natt x -> B"
	pinned, n := Pin(text, dsl.Options{})
	if n != 2 {
		t.Fatalf("Pin() changed %d lines, want 2", n)
	}

	before := dsl.ParseString(text, dsl.Options{}).Model
	after := dsl.ParseString(pinned, dsl.Options{}).Model
	for i := range before.Nodes {
		if after.Nodes[i].Placed {
			t.Errorf("node %s still auto-placed after Pin", after.Nodes[i].ID)
		}
		if math.Round(before.Nodes[i].X) != after.Nodes[i].X || math.Round(before.Nodes[i].Y) != after.Nodes[i].Y {
			t.Errorf("node %s moved: %v,%v -> %v,%v", before.Nodes[i].ID,
				before.Nodes[i].X, before.Nodes[i].Y, after.Nodes[i].X, after.Nodes[i].Y)
		}
	}

	if _, n := Pin(pinned, dsl.Options{}); n != 0 {
		t.Errorf("second Pin() changed %d lines, want 0", n)
	}
}
