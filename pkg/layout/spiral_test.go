package layout

import (
	"math"
	"testing"
)

func TestSpiralFirstPosition(t *testing.T) {
	s := NewSpiral(DefaultConfig())
	x, y := s.Next()

	angle := DefaultStep
	r := DefaultBaseRadius + DefaultGrowth*angle
	wantX := math.Round(DefaultCenterX + r*math.Cos(angle))
	wantY := math.Round(DefaultCenterY + r*math.Sin(angle))

	if x != wantX || y != wantY {
		t.Errorf("Next() = (%v, %v), want (%v, %v)", x, y, wantX, wantY)
	}
	if s.Placed() != 1 {
		t.Errorf("Placed() = %d, want 1", s.Placed())
	}
}

func TestSpiralDeterministic(t *testing.T) {
	a := NewSpiral(DefaultConfig())
	b := NewSpiral(DefaultConfig())

	for i := 0; i < 50; i++ {
		ax, ay := a.Next()
		bx, by := b.Next()
		if ax != bx || ay != by {
			t.Fatalf("step %d: (%v, %v) != (%v, %v)", i, ax, ay, bx, by)
		}
	}
}

func TestSpiralIntegerPositions(t *testing.T) {
	s := NewSpiral(DefaultConfig())
	for i := 0; i < 20; i++ {
		x, y := s.Next()
		if x != math.Trunc(x) || y != math.Trunc(y) {
			t.Fatalf("step %d: position (%v, %v) is not integral", i, x, y)
		}
	}
}

func TestSpiralRadiusWidens(t *testing.T) {
	s := NewSpiral(DefaultConfig())
	prev := 0.0
	for i := 0; i < 30; i++ {
		x, y := s.Next()
		d := math.Hypot(x-DefaultCenterX, y-DefaultCenterY)
		// Rounding can shave up to ~0.71px off the true radius.
		if d+1 < prev {
			t.Fatalf("step %d: distance %v shrank from %v", i, d, prev)
		}
		prev = d
	}
}

func TestSpiralNoOverlap(t *testing.T) {
	s := NewSpiral(DefaultConfig())
	seen := make(map[[2]float64]int)
	for i := 0; i < 200; i++ {
		x, y := s.Next()
		key := [2]float64{x, y}
		if j, ok := seen[key]; ok {
			t.Fatalf("step %d repeats position of step %d: (%v, %v)", i, j, x, y)
		}
		seen[key] = i
	}
}

func TestSpiralOrderDependence(t *testing.T) {
	// A fresh spiral's second position equals the position a node gets when
	// one auto-placed node precedes it.
	alone := NewSpiral(DefaultConfig())
	x1, y1 := alone.Next()

	shifted := NewSpiral(DefaultConfig())
	shifted.Next()
	x2, y2 := shifted.Next()

	if x1 == x2 && y1 == y2 {
		t.Error("inserting an earlier auto-placed node should shift later positions")
	}
}

func TestConfigWithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{"zero config", Config{}, DefaultConfig()},
		{
			"partial override",
			Config{CenterX: 100, Step: 1},
			Config{CenterX: 100, CenterY: DefaultCenterY, BaseRadius: DefaultBaseRadius, Step: 1, Growth: DefaultGrowth, CenterSet: true},
		},
		{
			"center at origin",
			Config{CenterSet: true},
			Config{BaseRadius: DefaultBaseRadius, Step: DefaultStep, Growth: DefaultGrowth, CenterSet: true},
		},
		{
			"negative step and growth",
			Config{Step: -1, Growth: -3},
			DefaultConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.WithDefaults(); got != tt.want {
				t.Errorf("WithDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
