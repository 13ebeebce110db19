package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erdsync/pkg/cache"
	"github.com/matzehuels/erdsync/pkg/dsl"
	"github.com/matzehuels/erdsync/pkg/observability"
	"github.com/matzehuels/erdsync/pkg/render"
)

// Runner executes the pipeline against a cache. It holds no per-run state
// and is safe for concurrent use.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// uses cache.DefaultKeyer and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, TTL: cache.DefaultTTL}
}

// Parse runs only the parse stage.
func (r *Runner) Parse(ctx context.Context, text string, opts Options) (*dsl.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()
	res := dsl.ParseString(text, opts.ParseOptions())
	observability.Sync().OnParse(ctx, "pipeline", len(res.Model.Nodes), len(res.Ignored), time.Since(start))
	return res, nil
}

// Execute parses text and renders every requested format, reading and
// writing the artifact cache.
func (r *Runner) Execute(ctx context.Context, text string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	parseStart := time.Now()
	parsed := dsl.ParseString(text, opts.ParseOptions())
	result := &Result{
		Model:     parsed.Model,
		Ignored:   parsed.Ignored,
		DocHash:   cache.HashString(text),
		Artifacts: make(map[render.Format][]byte, len(opts.Formats)),
	}
	result.Stats.Stats = parsed.Model.Stats()
	result.Stats.Ignored = len(parsed.Ignored)
	result.Stats.ParseTime = time.Since(parseStart)
	observability.Sync().OnParse(ctx, "pipeline", result.Stats.Nodes, result.Stats.Ignored, result.Stats.ParseTime)

	r.Logger.Debug("parsed diagram",
		"nodes", result.Stats.Nodes,
		"links", result.Stats.Links,
		"dangling", result.Stats.Dangling,
		"ignored", result.Stats.Ignored)

	renderStart := time.Now()
	for _, f := range opts.Formats {
		data, hit, err := r.renderCached(ctx, result, f, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		result.Artifacts[f] = data
		if hit {
			result.CacheInfo.Hits = append(result.CacheInfo.Hits, f)
		} else {
			result.CacheInfo.Misses = append(result.CacheInfo.Misses, f)
		}
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered diagram",
		"formats", opts.Formats,
		"cached", len(result.CacheInfo.Hits),
		"duration", result.Stats.RenderTime)
	return result, nil
}

func (r *Runner) renderCached(ctx context.Context, res *Result, f render.Format, opts Options) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(res.DocHash, opts.ArtifactKeyOpts(f))

	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", f, "error", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	data, err := Render(ctx, res.Model, f, opts.Detailed)
	observability.Sync().OnRender(ctx, string(f), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "format", f, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}
