package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Set(KeyCurrentCompanyID, "c1"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A fresh open sees the persisted value.
	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok := c2.Get(KeyCurrentCompanyID)
	if !ok || v != "c1" {
		t.Fatalf("expected c1, got %q ok=%v", v, ok)
	}
}

func TestCacheDiscardsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open should tolerate corrupt snapshot: %v", err)
	}
	if _, ok := c.Get(KeyPosts); ok {
		t.Fatalf("expected empty cache after corrupt snapshot")
	}
	// Still writable afterwards.
	if err := c.SetJSON(KeyPosts, []string{"p1"}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var posts []string
	ok, err := c.GetJSON(KeyPosts, &posts)
	if err != nil || !ok || len(posts) != 1 {
		t.Fatalf("GetJSON: ok=%v err=%v posts=%v", ok, err, posts)
	}
}

func TestCacheDiscardsCorruptEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Set(KeyCurrentUser, "{not json"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out map[string]string
	ok, err := c.GetJSON(KeyCurrentUser, &out)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if ok {
		t.Fatalf("corrupt entry must read as absent")
	}
	if _, present := c.Get(KeyCurrentUser); present {
		t.Fatalf("corrupt entry must be removed after failed parse")
	}

	// The removal persists.
	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, present := c2.Get(KeyCurrentUser); present {
		t.Fatalf("corrupt entry must not survive a reopen")
	}
}

func TestCacheDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.Set("k", "v")
	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected key removed")
	}
}
