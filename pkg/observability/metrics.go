package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric family names written by [Metrics].
const (
	MetricEvaluations       = "scalelist_evaluations_total"
	MetricEvaluateDuration  = "scalelist_evaluate_duration_seconds"
	MetricEvaluateItems     = "scalelist_evaluate_items_total"
	MetricCacheEvents       = "scalelist_cache_events_total"
	MetricCacheBytesWritten = "scalelist_cache_written_bytes_total"
	MetricHTTPRequests      = "scalelist_http_requests_total"
	MetricHTTPDuration      = "scalelist_http_request_duration_seconds"
	MetricHTTPErrors        = "scalelist_http_errors_total"
)

// Metrics counts hook events in memory and writes them in the Prometheus
// text exposition format. It implements [EvaluateHooks], [CacheHooks],
// [HTTPHooks] and [http.Handler], and is safe for concurrent use.
type Metrics struct {
	mu sync.Mutex

	evaluations map[string]uint64 // result -> count
	evalItems   uint64
	evalSum     float64
	evalCount   uint64

	cacheEvents map[[2]string]uint64 // {key_type, event} -> count
	cacheBytes  uint64

	requests   map[[3]string]uint64 // {method, path, code} -> count
	reqSum     float64
	reqCount   uint64
	httpErrors map[[2]string]uint64 // {method, path} -> count
}

// NewMetrics returns an empty metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		evaluations: make(map[string]uint64),
		cacheEvents: make(map[[2]string]uint64),
		requests:    make(map[[3]string]uint64),
		httpErrors:  make(map[[2]string]uint64),
	}
}

var (
	_ EvaluateHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
	_ http.Handler  = (*Metrics)(nil)
)

// OnEvaluateStart implements EvaluateHooks.
func (m *Metrics) OnEvaluateStart(context.Context, int) {}

// OnEvaluateComplete implements EvaluateHooks.
func (m *Metrics) OnEvaluateComplete(_ context.Context, items int, degenerate bool, d time.Duration, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case degenerate:
		result = "degenerate"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations[result]++
	m.evalItems += uint64(items)
	m.evalSum += d.Seconds()
	m.evalCount++
}

// OnCacheHit implements CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) { m.cacheEvent(keyType, "hit") }

// OnCacheMiss implements CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) { m.cacheEvent(keyType, "miss") }

// OnCacheSet implements CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvent(keyType, "set")
	m.mu.Lock()
	m.cacheBytes += uint64(size)
	m.mu.Unlock()
}

func (m *Metrics) cacheEvent(keyType, event string) {
	m.mu.Lock()
	m.cacheEvents[[2]string{keyType, event}]++
	m.mu.Unlock()
}

// OnRequest implements HTTPHooks.
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

// OnResponse implements HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, _, path string, status int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[[3]string{method, path, strconv.Itoa(status)}]++
	m.reqSum += d.Seconds()
	m.reqCount++
}

// OnError implements HTTPHooks.
func (m *Metrics) OnError(_ context.Context, method, _, path string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.httpErrors[[2]string{method, path}]++
}

// Families returns a snapshot of all metric families, sorted by name.
func (m *Metrics) Families() []*dto.MetricFamily {
	m.mu.Lock()
	defer m.mu.Unlock()

	fams := []*dto.MetricFamily{
		counterFamily(MetricEvaluations, "Node evaluations by result.", m.evaluations, func(k string) []*dto.LabelPair {
			return labels("result", k)
		}),
		summaryFamily(MetricEvaluateDuration, "Time spent evaluating nodes.", m.evalCount, m.evalSum),
		{
			Name:   ptr(MetricEvaluateItems),
			Help:   ptr("List items blended across all evaluations."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{counter(float64(m.evalItems))},
		},
		counterFamily(MetricCacheEvents, "Cache lookups and writes.", m.cacheEvents, func(k [2]string) []*dto.LabelPair {
			return labels("key_type", k[0], "event", k[1])
		}),
		{
			Name:   ptr(MetricCacheBytesWritten),
			Help:   ptr("Bytes written to the cache."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{counter(float64(m.cacheBytes))},
		},
		counterFamily(MetricHTTPRequests, "HTTP responses by method, path and status code.", m.requests, func(k [3]string) []*dto.LabelPair {
			return labels("method", k[0], "path", k[1], "code", k[2])
		}),
		summaryFamily(MetricHTTPDuration, "HTTP request latency.", m.reqCount, m.reqSum),
		counterFamily(MetricHTTPErrors, "HTTP requests that failed without a response.", m.httpErrors, func(k [2]string) []*dto.LabelPair {
			return labels("method", k[0], "path", k[1])
		}),
	}
	slices.SortFunc(fams, func(a, b *dto.MetricFamily) int { return strings.Compare(a.GetName(), b.GetName()) })
	return fams
}

// WriteText writes every metric family to w in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	for _, mf := range m.Families() {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ServeHTTP serves the text exposition.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write(buf.Bytes())
}

func ptr[T any](v T) *T { return &v }

// labels builds label pairs sorted by name.
func labels(kv ...string) []*dto.LabelPair {
	out := make([]*dto.LabelPair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, &dto.LabelPair{Name: ptr(kv[i]), Value: ptr(kv[i+1])})
	}
	slices.SortFunc(out, func(a, b *dto.LabelPair) int {
		return strings.Compare(a.GetName(), b.GetName())
	})
	return out
}

func counter(v float64) *dto.Metric {
	return &dto.Metric{Counter: &dto.Counter{Value: ptr(v)}}
}

func counterFamily[K comparable](name, help string, counts map[K]uint64, lbl func(K) []*dto.LabelPair) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: ptr(name),
		Help: ptr(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for k, v := range counts {
		metric := counter(float64(v))
		metric.Label = lbl(k)
		mf.Metric = append(mf.Metric, metric)
	}
	slices.SortFunc(mf.Metric, func(a, b *dto.Metric) int {
		return strings.Compare(labelString(a), labelString(b))
	})
	return mf
}

func summaryFamily(name, help string, count uint64, sum float64) *dto.MetricFamily {
	mf := &dto.MetricFamily{
		Name: ptr(name),
		Help: ptr(help),
		Type: dto.MetricType_SUMMARY.Enum(),
	}
	if count > 0 {
		mf.Metric = []*dto.Metric{{
			Summary: &dto.Summary{SampleCount: ptr(count), SampleSum: ptr(sum)},
		}}
	}
	return mf
}

func labelString(m *dto.Metric) string {
	var sb strings.Builder
	for _, lp := range m.GetLabel() {
		sb.WriteString(lp.GetName())
		sb.WriteByte('=')
		sb.WriteString(lp.GetValue())
		sb.WriteByte(',')
	}
	return sb.String()
}
