package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/scalelist/pkg/cache"
	"github.com/matzehuels/scalelist/pkg/dag"
	nodeio "github.com/matzehuels/scalelist/pkg/io"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/observability"
	"github.com/matzehuels/scalelist/pkg/render"
	"github.com/matzehuels/scalelist/pkg/render/nodelink"
)

// RenderGraph renders the attribute dependency graph of the scaleList node
// in every requested format. The bool result reports whether all artifacts
// came from the cache.
func (r *Runner) RenderGraph(ctx context.Context, opts GraphOptions) (map[string][]byte, bool, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	g := node.DefaultSchema().Graph()
	var graphData bytes.Buffer
	if err := nodeio.WriteGraphJSON(g, &graphData); err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(graphData.Bytes())

	hooks := observability.Cache()
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("rendered graph", "formats", opts.Formats, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Render generates graph artifacts without touching any cache. PNG and PDF
// need rsvg-convert on the PATH.
func Render(ctx context.Context, g *dag.DAG, opts GraphOptions) (map[string][]byte, error) {
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, dot)
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(data, DefaultPNGScale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(data)
			}
		case FormatJSON:
			var buf bytes.Buffer
			err = nodeio.WriteGraphJSON(g, &buf)
			data = buf.Bytes()
		default:
			return nil, fmt.Errorf("unsupported graph format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
