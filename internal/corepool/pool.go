// Package corepool caches one open sqlite.Store per workspace database path
// for the lifetime of the process, so concurrent operations against the same
// workspace (spec §5, "multiple parallel threads") share a single connection
// rather than re-opening and re-migrating the database on every call.
package corepool

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kodelink/task-mcp/internal/storage/sqlite"
)

// Pool caches opened workspace Stores keyed by database path.
//
// A naive cache ("check map, open if absent, insert") races: two goroutines
// that both miss the cache for the same never-before-seen workspace would
// each run sqlite.Open concurrently, and only one of the two *Store values
// would survive in the map while the other leaks its connection. singleflight
// collapses concurrent first-opens of the same key into one sqlite.Open call
// (spec §5, "multiple parallel threads... within a process"), exactly as the
// teacher's daemon uses it to collapse duplicate remote fetches.
type Pool struct {
	mu      sync.RWMutex
	stores  map[string]*sqlite.Store
	opening singleflight.Group
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{stores: make(map[string]*sqlite.Store)}
}

// Get returns the cached Store for dbPath, opening (and migrating) it on
// first use. Concurrent first-opens for the same path are collapsed into a
// single sqlite.Open call.
func (p *Pool) Get(ctx context.Context, dbPath string) (*sqlite.Store, error) {
	p.mu.RLock()
	if s, ok := p.stores[dbPath]; ok {
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()

	v, err, _ := p.opening.Do(dbPath, func() (any, error) {
		p.mu.RLock()
		if s, ok := p.stores[dbPath]; ok {
			p.mu.RUnlock()
			return s, nil
		}
		p.mu.RUnlock()

		s, err := sqlite.Open(ctx, dbPath)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.stores[dbPath] = s
		p.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sqlite.Store), nil
}

// CloseAll closes every cached Store, e.g. at process shutdown.
func (p *Pool) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for path, s := range p.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.stores, path)
	}
	return firstErr
}
