package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want miss", ok, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := c.Get(ctx, "key")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v, want hit", ok, err)
	}
	if string(data) != "value" {
		t.Errorf("Get = %q, want %q", data, "value")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("Get after Delete = hit, want miss")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Negative TTL stores without expiry.
	if _, ok, _ := c.Get(ctx, "key"); !ok {
		t.Error("entry without expiry reported as miss")
	}

	if err := c.Set(ctx, "short", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "short"); ok {
		t.Error("expired entry reported as hit")
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "key"); err != nil || ok {
		t.Errorf("NullCache.Get = ok=%v err=%v, want miss", ok, err)
	}
}

func TestKeyerDeterminism(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.AnnotationKey("abc")
	if b := k.AnnotationKey("abc"); a != b {
		t.Errorf("AnnotationKey not deterministic: %q vs %q", a, b)
	}
	if b := k.AnnotationKey("abd"); a == b {
		t.Error("AnnotationKey collides for different hashes")
	}

	opts := RenderKeyOpts{Format: "svg", TrackWidth: 800, LineWidth: 60}
	r1 := k.RenderKey("hash", opts)
	if r2 := k.RenderKey("hash", opts); r1 != r2 {
		t.Error("RenderKey not deterministic")
	}
	opts.Format = "json"
	if r2 := k.RenderKey("hash", opts); r1 == r2 {
		t.Error("RenderKey ignores format")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:42:")

	key := scoped.AnnotationKey("abc")
	if key == inner.AnnotationKey("abc") {
		t.Error("scoped key equals unscoped key")
	}
	if key != "user:42:"+inner.AnnotationKey("abc") {
		t.Errorf("scoped key = %q, want prefixed inner key", key)
	}

	// Nil inner falls back to the default keyer.
	fallback := NewScopedKeyer(nil, "p:")
	if fallback.AnnotationKey("abc") != "p:"+inner.AnnotationKey("abc") {
		t.Error("nil inner did not fall back to default keyer")
	}
}
