package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/nocgen/pkg/cache"
	"github.com/matzehuels/nocgen/pkg/config"
	"github.com/matzehuels/nocgen/pkg/observability"
	"github.com/matzehuels/nocgen/pkg/render"
	"github.com/matzehuels/nocgen/pkg/render/nodelink"
)

// RenderResult holds rendered diagrams keyed by format.
type RenderResult struct {
	Artifacts map[string][]byte
	CacheHit  bool
	Duration  time.Duration
}

// Render draws the network described by cfg in every requested format.
// If every format is cached the network is not rebuilt.
func (r *Runner) Render(ctx context.Context, cfg config.Config, formats []string, opts nodelink.Options) (*RenderResult, error) {
	if len(formats) == 0 {
		formats = []string{render.FormatSVG}
	}
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return nil, err
		}
	}
	cfg, err := Prepare(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)

	variant := r.Keyer.NetworkKey(cfg) + ":" + diagramVariant(opts)
	res := &RenderResult{Artifacts: make(map[string][]byte, len(formats))}

	if !r.Refresh {
		for _, f := range formats {
			data, ok := r.lookup(ctx, keyTypeArtifact, r.Keyer.ArtifactKey(variant, f))
			if !ok {
				break
			}
			res.Artifacts[f] = data
		}
		if len(res.Artifacts) == len(formats) {
			res.CacheHit = true
			res.Duration = time.Since(start)
			hooks.OnRenderComplete(ctx, formats, res.Duration, nil)
			return res, nil
		}
	}

	d, err := r.describe(ctx, cfg)
	if err != nil {
		hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
		return nil, err
	}
	for _, f := range formats {
		data, err := nodelink.Render(ctx, d, f, opts)
		if err != nil {
			err = fmt.Errorf("render %s: %w", f, err)
			hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
			return nil, err
		}
		res.Artifacts[f] = data
		r.store(ctx, keyTypeArtifact, r.Keyer.ArtifactKey(variant, f), data, cache.TTLArtifact)
	}

	res.Duration = time.Since(start)
	r.Logger.Info("rendered diagram", "formats", formats, "duration", res.Duration)
	hooks.OnRenderComplete(ctx, formats, res.Duration, nil)
	return res, nil
}

func diagramVariant(opts nodelink.Options) string {
	return fmt.Sprintf("s%g-pe%t-d%t", opts.Spacing, !opts.HidePE, opts.Detailed)
}
