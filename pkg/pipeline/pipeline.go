// Package pipeline runs diagram text through parse and render with artifact
// caching.
//
// The CLI, the HTTP API and the MCP tools all go through [Runner] so a given
// document renders identically everywhere and repeated renders of unchanged
// text come from the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, text, pipeline.Options{
//	    Formats: []render.Format{render.FormatSVG},
//	})
//	svg := res.Artifacts[render.FormatSVG]
//
// Parsing alone never fails and is never cached; it is cheaper than the
// cache lookup.
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdsync/pkg/cache"
	"github.com/matzehuels/erdsync/pkg/diagram"
	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/errors"
	"github.com/matzehuels/erdsync/pkg/layout"
	"github.com/matzehuels/erdsync/pkg/render"
)

// DefaultFormat is rendered when Options.Formats is empty.
const DefaultFormat = render.FormatSVG

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It supports JSON for API requests.
type Options struct {
	Formats  []render.Format `json:"formats,omitempty"`
	Layout   layout.Config   `json:"layout,omitzero"`
	Detailed bool            `json:"detailed,omitempty"`

	// Refresh skips cache reads but still writes fresh artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the formats, fills in defaults and
// deduplicates formats while preserving order.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{DefaultFormat}
	}
	seen := make(map[render.Format]bool, len(o.Formats))
	formats := o.Formats[:0:0]
	for _, f := range o.Formats {
		parsed, err := render.ParseFormat(string(f))
		if err != nil {
			return err
		}
		if !seen[parsed] {
			seen[parsed] = true
			formats = append(formats, parsed)
		}
	}
	o.Formats = formats

	if o.Layout.Step < 0 || o.Layout.Growth < 0 || o.Layout.BaseRadius < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout step, growth and base radius must not be negative")
	}
	o.Layout = o.Layout.WithDefaults()

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ParseOptions returns the dsl options implied by o.
func (o *Options) ParseOptions() dsl.Options {
	return dsl.Options{Layout: o.Layout}
}

// ArtifactKeyOpts returns the cache key inputs for one format.
func (o *Options) ArtifactKeyOpts(f render.Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: string(f), Layout: o.Layout, Detailed: o.Detailed}
}

// =============================================================================
// Result
// =============================================================================

// Result is the output of a pipeline run.
type Result struct {
	Model   diagram.Model
	Ignored []dsl.IgnoredLine

	// DocHash is the SHA-256 of the input text.
	DocHash string

	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[render.Format][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	diagram.Stats
	Ignored    int
	ParseTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo records which formats came from the cache.
type CacheInfo struct {
	Hits   []render.Format
	Misses []render.Format
}

// AllHit reports whether every artifact came from the cache.
func (c CacheInfo) AllHit() bool {
	return len(c.Misses) == 0 && len(c.Hits) > 0
}

func (r *Result) String() string {
	return fmt.Sprintf("%d nodes, %d links, %d artifacts", r.Stats.Nodes, r.Stats.Links, len(r.Artifacts))
}
