package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

func parse(t *testing.T, text string) map[string]*dto.MetricFamily {
	t.Helper()
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse exposition: %v\n%s", err, text)
	}
	return mfs
}

func value(mf *dto.MetricFamily, kv ...string) float64 {
	if mf == nil {
		return -1
	}
outer:
	for _, m := range mf.GetMetric() {
		for i := 0; i+1 < len(kv); i += 2 {
			found := false
			for _, lp := range m.GetLabel() {
				if lp.GetName() == kv[i] && lp.GetValue() == kv[i+1] {
					found = true
				}
			}
			if !found {
				continue outer
			}
		}
		return m.GetCounter().GetValue()
	}
	return -1
}

func TestMetricsText(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics()

	m.OnEvaluateComplete(ctx, 3, false, 2*time.Millisecond, nil)
	m.OnEvaluateComplete(ctx, 1, true, time.Millisecond, nil)
	m.OnEvaluateComplete(ctx, 0, false, 0, errors.New("boom"))
	m.OnCacheMiss(ctx, "result")
	m.OnCacheSet(ctx, "result", 512)
	m.OnCacheHit(ctx, "result")
	m.OnCacheHit(ctx, "result")
	m.OnResponse(ctx, "POST", "localhost", "/v1/evaluate", 200, time.Millisecond)
	m.OnResponse(ctx, "POST", "localhost", "/v1/evaluate", 400, time.Millisecond)
	m.OnError(ctx, "GET", "localhost", "/v1/schema", errors.New("refused"))

	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	mfs := parse(t, buf.String())

	tests := []struct {
		family string
		labels []string
		want   float64
	}{
		{MetricEvaluations, []string{"result", "ok"}, 1},
		{MetricEvaluations, []string{"result", "degenerate"}, 1},
		{MetricEvaluations, []string{"result", "error"}, 1},
		{MetricEvaluateItems, nil, 4},
		{MetricCacheEvents, []string{"key_type", "result", "event", "hit"}, 2},
		{MetricCacheEvents, []string{"key_type", "result", "event", "miss"}, 1},
		{MetricCacheBytesWritten, nil, 512},
		{MetricHTTPRequests, []string{"code", "200"}, 1},
		{MetricHTTPRequests, []string{"code", "400", "path", "/v1/evaluate"}, 1},
		{MetricHTTPErrors, []string{"path", "/v1/schema"}, 1},
	}
	for _, tt := range tests {
		if got := value(mfs[tt.family], tt.labels...); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.family, tt.labels, got, tt.want)
		}
	}

	summary := mfs[MetricEvaluateDuration].GetMetric()[0].GetSummary()
	if summary.GetSampleCount() != 3 {
		t.Errorf("evaluate duration count = %d, want 3", summary.GetSampleCount())
	}
}

func TestMetricsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMetrics().WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	mfs := parse(t, buf.String())
	if _, ok := mfs[MetricEvaluations]; ok {
		t.Error("families without samples should be omitted")
	}
	if got := value(mfs[MetricEvaluateItems]); got != 0 {
		t.Errorf("items = %v, want 0", got)
	}
}

func TestMetricsDeterministic(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()
	for _, kt := range []string{"result", "artifact", "zeta"} {
		m.OnCacheHit(ctx, kt)
	}

	var first bytes.Buffer
	_ = m.WriteText(&first)
	for i := 0; i < 5; i++ {
		var again bytes.Buffer
		_ = m.WriteText(&again)
		if again.String() != first.String() {
			t.Fatal("WriteText output is not deterministic")
		}
	}
}

func TestMetricsServeHTTP(t *testing.T) {
	m := NewMetrics()
	m.OnCacheHit(context.Background(), "result")

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), MetricCacheEvents) {
		t.Errorf("body missing %s:\n%s", MetricCacheEvents, rec.Body.String())
	}
}
