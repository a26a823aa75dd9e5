// Package pipeline runs scaleList evaluations for the CLI and the HTTP API.
//
// The pipeline validates a node's inputs, looks the result up in a
// [cache.Cache], evaluates on a miss and stores the outputs for the next
// caller. Evaluation itself is [node.Evaluate]: normalize weights if asked,
// blend the list, then build the scale matrix and its inverse.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Inputs: in})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Outputs.Scale, result.CacheHit)
//
// The attribute dependency graph is rendered and cached the same way:
//
//	artifacts, err := runner.RenderGraph(ctx, pipeline.GraphOptions{
//	    Formats: []string{pipeline.FormatSVG},
//	})
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scalelist/pkg/cache"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
)

// =============================================================================
// Default Values
// =============================================================================

// Engine identifies the blending and matrix code in result cache keys.
// Change it whenever evaluation semantics change.
const Engine = "scalelist-v1"

// Graph artifact formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// GraphFormats lists every supported graph artifact format.
var GraphFormats = []string{FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatJSON}

// DefaultPNGScale is the pixel density used for PNG graph artifacts.
const DefaultPNGScale = 2.0

// =============================================================================
// Options
// =============================================================================

// Options configures one evaluation.
type Options struct {
	Inputs node.Inputs

	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool

	// Logger overrides the runner's logger for this call.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults rejects non-finite inputs and fills in a discard
// logger. Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Inputs.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResultKeyOpts returns the cache key options for this evaluation.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{Engine: Engine}
}

// GraphOptions configures rendering of the attribute dependency graph.
type GraphOptions struct {
	Formats  []string
	Detailed bool
	Refresh  bool
	Logger   *log.Logger
}

// ValidateAndSetDefaults checks every format and defaults to SVG.
func (o *GraphOptions) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ArtifactKeyOpts returns the cache key options for one rendered format.
func (o *GraphOptions) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}

// ValidateFormat checks that format is a supported graph artifact format.
func ValidateFormat(format string) error {
	return errs.ValidateFormat(format, GraphFormats...)
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of one evaluation.
type Result struct {
	Outputs node.Outputs

	// InputHash is the content hash of the validated inputs.
	InputHash string

	Stats Stats

	// CacheHit is set when Outputs came from the cache.
	CacheHit bool
}

// Stats describes an evaluation.
type Stats struct {
	Items    int
	Duration time.Duration
}
