package cache

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir(), 24, true)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	digest := HashBytes([]byte("content"))

	if err := c.Set("some/file.py", digest, []byte(`{"defs":[]}`)); err != nil {
		t.Fatal(err)
	}

	payload, ok := c.Get("some/file.py", digest)
	if !ok {
		t.Fatal("expected hit")
	}
	if string(payload) != `{"defs":[]}` {
		t.Errorf("payload = %s", payload)
	}
}

func TestGetDigestMismatch(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("file.py", HashBytes([]byte("v1")), []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("file.py", HashBytes([]byte("v2"))); ok {
		t.Error("stale digest must miss")
	}
}

func TestGetMissingKey(t *testing.T) {
	c := newTestCache(t)
	if _, ok := c.Get("never/stored.py", "digest"); ok {
		t.Error("unknown key must miss")
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c := Disabled()
	if c.Enabled() {
		t.Error("Disabled() reported enabled")
	}
	if err := c.Set("k", "d", []byte("v")); err != nil {
		t.Errorf("disabled Set errored: %v", err)
	}
	if _, ok := c.Get("k", "d"); ok {
		t.Error("disabled cache returned a hit")
	}
	if err := c.Clear(); err != nil {
		t.Errorf("disabled Clear errored: %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	c := newTestCache(t)
	digest := HashBytes([]byte("x"))

	if err := c.Set("k", digest, []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k", digest); ok {
		t.Error("invalidated entry still hits")
	}
	if err := c.Invalidate("k"); err != nil {
		t.Errorf("double invalidate must be a no-op, got %v", err)
	}
}

func TestClear(t *testing.T) {
	c := newTestCache(t)
	digest := HashBytes([]byte("x"))

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(k, digest, []byte("v")); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok := c.Get(k, digest); ok {
			t.Errorf("entry %s survived Clear", k)
		}
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	digest := HashBytes([]byte("x"))

	// Write an entry stamped two hours in the past.
	data, err := json.Marshal(entry{
		Digest:  digest,
		Created: time.Now().Add(-2 * time.Hour),
		Payload: []byte("v"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.keyPath("k"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get("k", digest); ok {
		t.Error("expired entry must miss")
	}
}

func TestHashBytesStable(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	if a != b {
		t.Error("same input hashed differently")
	}
	if a == HashBytes([]byte("other")) {
		t.Error("different inputs collided")
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
}
