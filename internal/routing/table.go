package routing

import (
	"sync"
)

// ActiveRouteTable holds the set of routing keys currently backed by a live
// sandbox. Single writer (the route poller), many readers (one admission
// check per message). Replace swaps the whole set; readers never observe a
// mix of old and new membership. The table starts empty, so a baseline that
// has not completed its first poll treats all targeted traffic as orphaned
// and processes it.
type ActiveRouteTable struct {
	mu     sync.RWMutex
	routes map[string]struct{}
}

func NewActiveRouteTable() *ActiveRouteTable {
	return &ActiveRouteTable{
		routes: make(map[string]struct{}),
	}
}

func (t *ActiveRouteTable) Replace(keys []string) {
	routes := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		routes[key] = struct{}{}
	}

	t.mu.Lock()
	t.routes = routes
	t.mu.Unlock()
}

func (t *ActiveRouteTable) Snapshot() map[string]struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make(map[string]struct{}, len(t.routes))
	for key := range t.routes {
		snapshot[key] = struct{}{}
	}
	return snapshot
}

func (t *ActiveRouteTable) Contains(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.routes[key]
	return ok
}

func (t *ActiveRouteTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.routes)
}
