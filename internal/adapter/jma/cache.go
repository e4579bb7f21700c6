package jma

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/jma-forecast/internal/domain"
)

// CachedAreaSource wraps an AreaSource so the directory is downloaded once per
// process. Concurrent first callers share a single request. Failures are not
// cached, so the next caller tries again.
type CachedAreaSource struct {
	inner domain.AreaSource
	group singleflight.Group

	mu     sync.RWMutex
	dir    domain.AreaDirectory
	loaded bool
}

// NewCachedAreaSource creates a caching decorator around an area source.
func NewCachedAreaSource(inner domain.AreaSource) *CachedAreaSource {
	return &CachedAreaSource{inner: inner}
}

func (c *CachedAreaSource) FetchAreas(ctx context.Context) (domain.AreaDirectory, error) {
	if dir, ok := c.cached(); ok {
		return dir, nil
	}

	// The shared load outlives any one caller; each caller stops waiting
	// when its own ctx is done.
	ch := c.group.DoChan("areas", func() (any, error) {
		if dir, ok := c.cached(); ok {
			return dir, nil
		}
		dir, err := c.inner.FetchAreas(context.WithoutCancel(ctx))
		if err != nil {
			return domain.AreaDirectory{}, err
		}
		c.mu.Lock()
		c.dir, c.loaded = dir, true
		c.mu.Unlock()
		return dir, nil
	})

	select {
	case <-ctx.Done():
		return domain.AreaDirectory{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.AreaDirectory{}, res.Err
		}
		return res.Val.(domain.AreaDirectory), nil
	}
}

func (c *CachedAreaSource) cached() (domain.AreaDirectory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dir, c.loaded
}
