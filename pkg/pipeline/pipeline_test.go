package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/erdsync/pkg/cache"
	"github.com/matzehuels/erdsync/pkg/errors"
	"github.com/matzehuels/erdsync/pkg/layout"
	"github.com/matzehuels/erdsync/pkg/render"
)

const sample = "ent EMPLOYEE (100, 100)\nrel WORKS (200, 100)\nent DEPT (300, 100)\nlink EMPLOYEE WORKS \"N\" [total]\nlink DEPT WORKS \"1\"\nbogus line"

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() = %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats = %v, want [%s]", opts.Formats, DefaultFormat)
	}
	if opts.Layout != layout.DefaultConfig() {
		t.Errorf("Layout = %+v, want defaults", opts.Layout)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsFormats(t *testing.T) {
	opts := Options{Formats: []render.Format{"SVG", "dot", "svg", ".json"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	want := []render.Format{render.FormatSVG, render.FormatDOT, render.FormatJSON}
	if len(opts.Formats) != len(want) {
		t.Fatalf("Formats = %v, want %v", opts.Formats, want)
	}
	for i := range want {
		if opts.Formats[i] != want[i] {
			t.Errorf("Formats[%d] = %s, want %s", i, opts.Formats[i], want[i])
		}
	}

	bad := Options{Formats: []render.Format{"gif"}}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("invalid format error = %v", err)
	}
}

func TestOptionsNegativeLayout(t *testing.T) {
	opts := Options{Layout: layout.Config{Step: -1}}
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative step error = %v", err)
	}
}

func TestRunnerParse(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Parse(context.Background(), sample, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Model.Nodes) != 3 || len(res.Model.Links) != 2 {
		t.Errorf("model = %d nodes, %d links", len(res.Model.Nodes), len(res.Model.Links))
	}
	if len(res.Ignored) != 1 {
		t.Errorf("ignored = %v", res.Ignored)
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	opts := Options{Formats: []render.Format{render.FormatDOT, render.FormatJSON}}

	first, err := r.Execute(ctx, sample, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.CacheInfo.Misses) != 2 || first.CacheInfo.AllHit() {
		t.Errorf("first run CacheInfo = %+v", first.CacheInfo)
	}
	if !strings.Contains(string(first.Artifacts[render.FormatDOT]), `"EMPLOYEE" -- "WORKS"`) {
		t.Errorf("dot artifact:\n%s", first.Artifacts[render.FormatDOT])
	}
	if !strings.Contains(string(first.Artifacts[render.FormatJSON]), `"id": "DEPT"`) {
		t.Errorf("json artifact:\n%s", first.Artifacts[render.FormatJSON])
	}
	if first.Stats.Nodes != 3 || first.Stats.Ignored != 1 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	if first.DocHash != cache.HashString(sample) {
		t.Error("DocHash mismatch")
	}

	second, err := r.Execute(ctx, sample, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.AllHit() {
		t.Errorf("second run CacheInfo = %+v", second.CacheInfo)
	}
	if string(second.Artifacts[render.FormatDOT]) != string(first.Artifacts[render.FormatDOT]) {
		t.Error("cached artifact differs")
	}

	refreshed, err := r.Execute(ctx, sample, Options{Formats: opts.Formats, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(refreshed.CacheInfo.Hits) != 0 {
		t.Errorf("Refresh should bypass cache reads: %+v", refreshed.CacheInfo)
	}

	edited, err := r.Execute(ctx, sample+"\nent NEW (1, 1)", opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(edited.CacheInfo.Hits) != 0 {
		t.Error("edited text must not hit the cache")
	}
}

func TestRender(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Parse(context.Background(), sample, Options{})
	if err != nil {
		t.Fatal(err)
	}
	dot, err := Render(context.Background(), res.Model, render.FormatDOT, true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "xlabel") {
		t.Error("detailed DOT should carry xlabels")
	}
	if _, err := Render(context.Background(), res.Model, "gif", false); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown format error = %v", err)
	}
}
