package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnModuleStart(ctx, "F-16C")
	r.OnModuleComplete(ctx, "F-16C", 4, time.Second, nil)
	r.OnSourceLoad(ctx, "F-16C:LMFD", "/tmp/lmfd.png", time.Millisecond, nil)
	r.OnCompose(ctx, "F-16C-LMFD-42", 3, time.Millisecond)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "F-16C", "F-16C-LMFD-42")
	c.OnCacheMiss(ctx, "F-16C", "F-16C-LMFD-42", true)
	c.OnCacheSet(ctx, "F-16C", "F-16C-LMFD-42", 1024)
	c.OnCacheWriteError(ctx, "F-16C", "F-16C-LMFD-42", errors.New("disk full"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRenderHooks{}
	SetRenderHooks(custom)
	SetRenderHooks(nil)

	if Render() != custom {
		t.Error("SetRenderHooks(nil) should be ignored")
	}

	Reset()
}

type testRenderHooks struct{ NoopRenderHooks }
type testCacheHooks struct{ NoopCacheHooks }
