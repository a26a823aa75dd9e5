package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scalelist/pkg/cache"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeResult   = "result"
	keyTypeArtifact = "artifact"
)

// Runner evaluates nodes with caching.
//
// The Runner holds no per-evaluation state. Multiple goroutines can share a
// Runner as long as the Computer is safe for concurrent use, which
// [node.Evaluate] is.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Computer node.Computer

	// ResultTTL is how long evaluated outputs stay cached.
	ResultTTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		Computer:  node.ComputerFunc(node.Evaluate),
		ResultTTL: cache.TTLResult,
	}
}

// Execute validates opts.Inputs and returns their outputs, from the cache
// when possible. Degenerate scales are not an error; check
// Result.Outputs.Degenerate.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	for i, c := range opts.Inputs.List {
		if !errs.WeightInSuggestedRange(c.Weight) {
			logger.Warn("weight outside suggested range", "item", i, "name", c.Name, "weight", c.Weight,
				"min", errs.MinSuggestedWeight, "max", errs.MaxSuggestedWeight)
		}
	}

	hash, err := cache.HashJSON(opts.Inputs)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "hash inputs")
	}
	key := r.Keyer.ResultKey(hash, opts.ResultKeyOpts())
	result := &Result{InputHash: hash, Stats: Stats{Items: len(opts.Inputs.List)}}

	hooks := observability.Cache()
	if !opts.Refresh {
		var cached node.Outputs
		if err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil {
			hooks.OnCacheHit(ctx, keyTypeResult)
			logger.Debug("result cache hit", "hash", hash[:12])
			result.Outputs = cached
			result.CacheHit = true
			return result, nil
		}
		hooks.OnCacheMiss(ctx, keyTypeResult)
	}

	result.Outputs, result.Stats.Duration = r.evaluate(ctx, opts.Inputs)
	if result.Outputs.Degenerate {
		logger.Warn("degenerate scale, inverse matrix is zero", "scale", fmtVec(result.Outputs))
	}
	logger.Info("evaluated", "items", result.Stats.Items, "duration", result.Stats.Duration)

	if data, err := json.Marshal(result.Outputs); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ResultTTL); err != nil {
			logger.Warn("cache store failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeResult, len(data))
		}
	}
	return result, nil
}

// Evaluate is a convenience wrapper that returns only the outputs.
func (r *Runner) Evaluate(ctx context.Context, in node.Inputs) (node.Outputs, error) {
	res, err := r.Execute(ctx, Options{Inputs: in})
	if err != nil {
		return node.Outputs{}, err
	}
	return res.Outputs, nil
}

func (r *Runner) evaluate(ctx context.Context, in node.Inputs) (node.Outputs, time.Duration) {
	hooks := observability.Evaluate()
	hooks.OnEvaluateStart(ctx, len(in.List))

	start := time.Now()
	out := r.Computer.Recompute(in)
	d := time.Since(start)

	hooks.OnEvaluateComplete(ctx, len(in.List), out.Degenerate, d, nil)
	return out, d
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func fmtVec(o node.Outputs) string {
	return fmt.Sprintf("(%g, %g, %g)", o.Scale.X, o.Scale.Y, o.Scale.Z)
}
