// Package cache provides a small file-backed key/value snapshot store.
// Values are opaque JSON strings; the whole map is persisted on every
// write so a restart can rehydrate client-visible state.
package cache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

type Cache struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

// Keys mirrored for session continuity.
const (
	KeyCompanies        = "companies"
	KeyCurrentCompanyID = "currentCompanyId"
	KeyPosts            = "posts"
	KeyCurrentUser      = "currentUser"
)

// Open loads the snapshot at path, creating parent directories as needed.
// A corrupt snapshot is discarded and logged, never fatal.
func Open(path string) (*Cache, error) {
	c := &Cache{path: path, data: map[string]string{}}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &c.data); err != nil {
		log.Printf("[Cache] discarding corrupt snapshot path=%s err=%v", path, err)
		c.data = map[string]string{}
	}
	return c, nil
}

func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *Cache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return c.flushLocked()
}

func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return c.flushLocked()
}

// SetJSON marshals v and stores it under key.
func (c *Cache) SetJSON(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, string(b))
}

// GetJSON unmarshals the value under key into out. Returns false when
// absent. A corrupt entry is dropped from the snapshot and reported as
// absent, same as a corrupt whole file in Open.
func (c *Cache) GetJSON(key string, out interface{}) (bool, error) {
	v, ok := c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(v), out); err != nil {
		log.Printf("[Cache] discarding corrupt entry key=%s err=%v", key, err)
		if delErr := c.Delete(key); delErr != nil {
			return false, delErr
		}
		return false, nil
	}
	return true, nil
}

func (c *Cache) flushLocked() error {
	b, err := json.MarshalIndent(c.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
