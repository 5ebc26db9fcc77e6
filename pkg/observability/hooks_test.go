package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Compile hooks
	p := NoopCompileHooks{}
	p.OnBuildStart(ctx, "memory", 1)
	p.OnBuildComplete(ctx, "memory", 3, time.Second, nil)
	p.OnAnnotateStart(ctx, "memory", 2)
	p.OnAnnotateComplete(ctx, "memory", 2, 120, time.Second, nil)
	p.OnGenerateStart(ctx, "memory", 2)
	p.OnGenerateComplete(ctx, "memory", 2, 500, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "circuit")
	c.OnCacheSet(ctx, "detectors", 1024)

	// Server hooks
	h := NoopServerHooks{}
	h.OnRequest(ctx, "POST", "/v1/compile")
	h.OnResponse(ctx, "POST", "/v1/compile", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Compile().(NoopCompileHooks); !ok {
		t.Error("Compile() should return NoopCompileHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	// Set custom hooks
	customCompile := &testCompileHooks{}
	SetCompileHooks(customCompile)
	if Compile() != customCompile {
		t.Error("SetCompileHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Compile().(NoopCompileHooks); !ok {
		t.Error("Reset() should restore NoopCompileHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testCompileHooks{}
	SetCompileHooks(custom)

	// Setting nil should be ignored
	SetCompileHooks(nil)

	if Compile() != custom {
		t.Error("SetCompileHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testCompileHooks struct{ NoopCompileHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
