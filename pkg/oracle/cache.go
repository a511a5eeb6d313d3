/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cache.go
Description: Verdict-caching oracle wrapper for the Arvada grammar miner. Memoizes
every oracle verdict by exact probe string for the lifetime of a search run, so the
expensive underlying oracle is only consulted once per distinct string. Thread-safe:
the probe worker pool queries the cache concurrently.
*/

package oracle

import (
	"context"
	"sync"

	"github.com/rifatarefin/arvada/pkg/interfaces"
)

// CachingOracle wraps another oracle with an exact-string verdict cache.
// The cache lives as long as the wrapper, i.e. one search run; it is
// owned by the run's context object rather than any global state.
type CachingOracle struct {
	inner interfaces.Oracle

	mu       sync.Mutex
	verdicts map[string]bool
	inflight map[string]*call
	hits     int64
	calls    int64
}

type call struct {
	done    chan struct{}
	verdict bool
	err     error
}

// NewCachingOracle wraps inner with a process-wide-per-run verdict cache
func NewCachingOracle(inner interfaces.Oracle) *CachingOracle {
	return &CachingOracle{
		inner:    inner,
		verdicts: make(map[string]bool),
		inflight: make(map[string]*call),
	}
}

// IsValid returns the cached verdict for input, or consults the inner
// oracle exactly once per distinct string. Concurrent requests for the
// same string share a single inner invocation. Failed invocations
// (oracle unavailable) are cached as rejections, since repeating a
// broken call buys nothing.
func (c *CachingOracle) IsValid(ctx context.Context, input string) (bool, error) {
	c.mu.Lock()
	c.calls++
	if v, ok := c.verdicts[input]; ok {
		c.hits++
		c.mu.Unlock()
		return v, nil
	}
	if cl, ok := c.inflight[input]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.verdict, cl.err
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[input] = cl
	c.mu.Unlock()

	verdict, err := c.inner.IsValid(ctx, input)
	if err != nil {
		verdict = false
	}

	cl.verdict, cl.err = verdict, err
	close(cl.done)

	c.mu.Lock()
	c.verdicts[input] = verdict
	delete(c.inflight, input)
	c.mu.Unlock()

	return verdict, err
}

// Known reports whether a verdict for input is already cached, and the
// verdict itself if so. Used by validation replay tests.
func (c *CachingOracle) Known(input string) (verdict, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	verdict, ok = c.verdicts[input]
	return verdict, ok
}

// Stats merges the inner oracle's counters with cache bookkeeping
func (c *CachingOracle) Stats() interfaces.OracleStats {
	s := c.inner.Stats()
	c.mu.Lock()
	s.Calls = c.calls
	s.CacheHits = c.hits
	c.mu.Unlock()
	return s
}
