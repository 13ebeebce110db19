package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/erdsync/pkg/diagram"
	"github.com/matzehuels/erdsync/pkg/errors"
	"github.com/matzehuels/erdsync/pkg/render"
	"github.com/matzehuels/erdsync/pkg/render/nodelink"
)

// Render produces a single artifact for m without touching any cache.
func Render(ctx context.Context, m diagram.Model, f render.Format, detailed bool) ([]byte, error) {
	switch f {
	case render.FormatJSON:
		return diagram.MarshalModel(m)
	case render.FormatDOT:
		return []byte(nodelink.ToDOT(m, nodelink.Options{Detailed: detailed})), nil
	case render.FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(m, nodelink.Options{Detailed: detailed}))
	case render.FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(m, nodelink.Options{Detailed: detailed}))
	case render.FormatPDF:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(m, nodelink.Options{Detailed: detailed}))
		if err != nil {
			return nil, fmt.Errorf("svg: %w", err)
		}
		return render.ToPDF(ctx, svg)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
}
