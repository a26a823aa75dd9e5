package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/scalelist/pkg/cache"
	"github.com/matzehuels/scalelist/pkg/core/blend"
	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
	"github.com/matzehuels/scalelist/pkg/observability"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Inputs: node.Inputs{List: blend.List{{Weight: math.NaN(), Scale: blend.One}}}}
	err := opts.ValidateAndSetDefaults()
	if !errs.Is(err, errs.ErrCodeInvalidWeight) {
		t.Fatalf("NaN weight: err = %v, want INVALID_WEIGHT", err)
	}

	opts = Options{Inputs: node.Inputs{List: blend.List{{Weight: 3, Scale: blend.One}}}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("out-of-range weight should be valid: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}
}

func TestGraphOptionsDefaults(t *testing.T) {
	var opts GraphOptions
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}

	bad := GraphOptions{Formats: []string{"svg", "gif"}}
	if err := bad.ValidateAndSetDefaults(); err == nil {
		t.Error("gif should be rejected")
	}
}

type countingComputer struct{ calls int }

func (c *countingComputer) Recompute(in node.Inputs) node.Outputs {
	c.calls++
	return node.Evaluate(in)
}

func newTestRunner(t *testing.T) (*Runner, *countingComputer) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, log.New(&bytes.Buffer{}))
	counter := &countingComputer{}
	r.Computer = counter
	t.Cleanup(func() { _ = r.Close() })
	return r, counter
}

func testInputs() node.Inputs {
	return node.Inputs{List: blend.List{
		{Name: "a", Weight: 0.5, Absolute: true, Scale: r3.Vec{X: 2, Y: 2, Z: 2}},
		{Name: "b", Weight: 0.5, Absolute: true, Scale: r3.Vec{X: 4, Y: 4, Z: 4}},
	}}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	r, counter := newTestRunner(t)

	first, err := r.Execute(ctx, Options{Inputs: testInputs()})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first run should miss")
	}
	if first.Outputs.Scale != (r3.Vec{X: 2.75, Y: 2.75, Z: 2.75}) {
		t.Errorf("Scale = %v, want 2.75 on every axis", first.Outputs.Scale)
	}
	if first.Stats.Items != 2 || first.InputHash == "" {
		t.Errorf("Stats = %+v, hash = %q", first.Stats, first.InputHash)
	}

	second, err := r.Execute(ctx, Options{Inputs: testInputs()})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second run should hit")
	}
	if second.Outputs != first.Outputs {
		t.Errorf("cached outputs differ:\n got %+v\nwant %+v", second.Outputs, first.Outputs)
	}
	if counter.calls != 1 {
		t.Errorf("Recompute calls = %d, want 1", counter.calls)
	}

	if _, err := r.Execute(ctx, Options{Inputs: testInputs(), Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if counter.calls != 2 {
		t.Errorf("Refresh should recompute, calls = %d", counter.calls)
	}
}

func TestExecuteOrderChangesKey(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)

	in := testInputs()
	ab, _ := r.Execute(ctx, Options{Inputs: in})
	in.List[0], in.List[1] = in.List[1], in.List[0]
	ba, _ := r.Execute(ctx, Options{Inputs: in})

	if ab.InputHash == ba.InputHash {
		t.Error("reordered list should hash differently")
	}
	if ba.CacheHit {
		t.Error("reordered list should not hit the cache")
	}
	if ba.Outputs.Scale.X != 2.25 {
		t.Errorf("B then A = %v, want 2.25", ba.Outputs.Scale.X)
	}
}

func TestExecuteDegenerate(t *testing.T) {
	r, _ := newTestRunner(t)
	in := node.Inputs{List: blend.List{{Weight: 1, Absolute: true, Scale: r3.Vec{X: 0, Y: 1, Z: 1}}}}

	res, err := r.Execute(context.Background(), Options{Inputs: in})
	if err != nil {
		t.Fatalf("degenerate scale should not fail: %v", err)
	}
	if !res.Outputs.Degenerate {
		t.Error("Degenerate should be set")
	}
}

func TestExecuteWarnsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(nil, nil, log.New(&buf))
	in := node.Inputs{List: blend.List{{Name: "big", Weight: 2, Scale: blend.One}}}

	if _, err := r.Execute(context.Background(), Options{Inputs: in}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "weight outside suggested range") {
		t.Errorf("expected a range warning, log:\n%s", buf.String())
	}
}

func TestExecuteInvalid(t *testing.T) {
	r, counter := newTestRunner(t)
	in := node.Inputs{List: blend.List{{Weight: 1, Scale: r3.Vec{X: math.Inf(1), Y: 1, Z: 1}}}}

	_, err := r.Execute(context.Background(), Options{Inputs: in})
	if !errs.Is(err, errs.ErrCodeInvalidScale) {
		t.Errorf("err = %v, want INVALID_SCALE", err)
	}
	if counter.calls != 0 {
		t.Error("invalid inputs should not be evaluated")
	}
}

type recordingHooks struct {
	observability.NoopCacheHooks
	observability.NoopEvaluateHooks
	hits, misses, sets, evals int
}

func (h *recordingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *recordingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *recordingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }
func (h *recordingHooks) OnEvaluateComplete(context.Context, int, bool, time.Duration, error) {
	h.evals++
}

func TestExecuteHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetCacheHooks(h)
	observability.SetEvaluateHooks(h)
	t.Cleanup(observability.Reset)

	r, _ := newTestRunner(t)
	ctx := context.Background()
	_, _ = r.Execute(ctx, Options{Inputs: testInputs()})
	_, _ = r.Execute(ctx, Options{Inputs: testInputs()})

	if h.misses != 1 || h.sets != 1 || h.hits != 1 || h.evals != 1 {
		t.Errorf("hooks: hits=%d misses=%d sets=%d evals=%d, want 1 each", h.hits, h.misses, h.sets, h.evals)
	}
}

func TestEvaluate(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	out, err := r.Evaluate(context.Background(), node.Inputs{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Scale != blend.One {
		t.Errorf("empty list = %v, want identity", out.Scale)
	}

	_, err = r.Evaluate(context.Background(), node.Inputs{List: blend.List{{Weight: math.NaN()}}})
	if err == nil || !errors.As(err, new(*errs.Error)) {
		t.Errorf("err = %v, want a coded error", err)
	}
}

func TestRenderGraphCaches(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	opts := GraphOptions{Formats: []string{FormatDOT, FormatJSON}}

	first, hit, err := r.RenderGraph(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first render should miss")
	}
	if !strings.HasPrefix(string(first[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %q", first[FormatDOT])
	}
	if !bytes.Contains(first[FormatJSON], []byte(`"inverseMatrix"`)) {
		t.Error("json artifact should list the inverseMatrix node")
	}

	second, hit, err := r.RenderGraph(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second render should hit")
	}
	if !bytes.Equal(first[FormatDOT], second[FormatDOT]) {
		t.Error("cached dot differs")
	}

	detailed, hit, _ := r.RenderGraph(ctx, GraphOptions{Formats: []string{FormatDOT}, Detailed: true})
	if hit {
		t.Error("detailed render should use its own key")
	}
	if bytes.Equal(detailed[FormatDOT], first[FormatDOT]) {
		t.Error("detailed dot should differ")
	}
}
