package daemon

import (
	"net/netip"
	"sort"
	"sync"
	"time"

	"github.com/veesix-networks/ndiscd/pkg/events"
)

type routerKey struct {
	iface  string
	router netip.Addr
}

// RouterTable holds the latest advertisement snapshot per (interface,
// router) pair. In-memory only; entries disappear with the process.
type RouterTable struct {
	mu      sync.RWMutex
	routers map[routerKey]events.RouterUpdate
}

func NewRouterTable() *RouterTable {
	return &RouterTable{
		routers: make(map[routerKey]events.RouterUpdate),
	}
}

func (t *RouterTable) handleEvent(e events.Event) {
	update, ok := e.Data.(events.RouterUpdate)
	if !ok {
		return
	}
	t.Update(update)
}

func (t *RouterTable) Update(u events.RouterUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routers[routerKey{iface: u.Interface, router: u.Router}] = u
}

// Routers returns unexpired entries sorted by interface then router
// address. Entries whose router lifetime has run out are pruned.
func (t *RouterTable) Routers() []events.RouterUpdate {
	now := time.Now()

	t.mu.Lock()
	for key, u := range t.routers {
		if u.RouterLifetime > 0 && u.LifetimeDeadline.Before(now) {
			delete(t.routers, key)
		}
	}
	out := make([]events.RouterUpdate, 0, len(t.routers))
	for _, u := range t.routers {
		out = append(out, u)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Interface != out[j].Interface {
			return out[i].Interface < out[j].Interface
		}
		return out[i].Router.Less(out[j].Router)
	})
	return out
}

func (t *RouterTable) CountByInterface() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	counts := make(map[string]int)
	for key := range t.routers {
		counts[key.iface]++
	}
	return counts
}
