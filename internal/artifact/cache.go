// Package artifact guarantees at-most-once archive creation and
// publication registration per target within one staging run.
package artifact

import (
	"fmt"
	"sort"
	"sync"
)

// Handle identifies one built archive for a target.
type Handle struct {
	Target string
	Path   string
}

// Cache memoizes per-target archive handles and publication
// registrations. Create one per run with NewCache; it holds no external
// resources and is never persisted.
type Cache struct {
	mu        sync.Mutex
	archives  map[string]*Handle
	published map[string]bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		archives:  make(map[string]*Handle),
		published: make(map[string]bool),
	}
}

// GetOrCreate returns the handle cached for target, invoking build and
// storing its result on first use. A failed build stores nothing, so a
// later call may retry. The lock is held across build, preserving the
// at-most-once guarantee if a host configures targets concurrently.
func (c *Cache) GetOrCreate(target string, build func() (*Handle, error)) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if handle, ok := c.archives[target]; ok {
		return handle, nil
	}

	handle, err := build()
	if err != nil {
		return nil, fmt.Errorf("create artifact for %s: %w", target, err)
	}
	c.archives[target] = handle
	return handle, nil
}

// RegisterPublicationOnce invokes register the first time it is called
// for target; later calls are no-ops. A failed register leaves the
// target unregistered so a fixed re-run can succeed.
func (c *Cache) RegisterPublicationOnce(target string, register func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.published[target] {
		return nil
	}

	if err := register(); err != nil {
		return fmt.Errorf("register publication for %s: %w", target, err)
	}
	c.published[target] = true
	return nil
}

// Targets returns the sorted names holding a cached archive.
func (c *Cache) Targets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.archives))
	for name := range c.archives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
