package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopEvaluateHooks{}
	e.OnEvaluateStart(ctx, 3)
	e.OnEvaluateComplete(ctx, 3, false, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "result")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "localhost:8080", "/v1/evaluate")
	h.OnResponse(ctx, "POST", "localhost:8080", "/v1/evaluate", 200, time.Millisecond)
	h.OnError(ctx, "POST", "localhost:8080", "/v1/evaluate", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Evaluate().(NoopEvaluateHooks); !ok {
		t.Error("Evaluate() should return NoopEvaluateHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customEvaluate := &testEvaluateHooks{}
	SetEvaluateHooks(customEvaluate)
	if Evaluate() != customEvaluate {
		t.Error("SetEvaluateHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Evaluate().(NoopEvaluateHooks); !ok {
		t.Error("Reset() should restore NoopEvaluateHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testEvaluateHooks{}
	SetEvaluateHooks(custom)
	SetEvaluateHooks(nil)

	if Evaluate() != custom {
		t.Error("SetEvaluateHooks(nil) should be ignored")
	}

	Reset()
}

type testEvaluateHooks struct{ NoopEvaluateHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
