package scan

import (
	"cmp"
	"maps"
	"slices"
	"sync"

	"github.com/moyoez/gtranslate-ipcheck/types"
)

// LatencyTable maps a candidate address to its best observed latency in milliseconds.
// An address is recorded at most once; later inserts for it are ignored.
type LatencyTable struct {
	mu sync.RWMutex
	m  map[string]int64
}

func NewLatencyTable() *LatencyTable {
	return &LatencyTable{m: make(map[string]int64)}
}

// TryAdd records addr if it has no entry yet and reports whether it did.
func (t *LatencyTable) TryAdd(addr string, latencyMs int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.m[addr]; ok {
		return false
	}
	t.m[addr] = latencyMs
	return true
}

func (t *LatencyTable) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.m)
}

func (t *LatencyTable) Get(addr string) (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.m[addr]
	return v, ok
}

// Snapshot returns a copy of the table.
func (t *LatencyTable) Snapshot() map[string]int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.m)
}

// Sorted returns the entries ordered by latency, ties by numeric address.
func (t *LatencyTable) Sorted() []types.RankedIP {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	out := make([]types.RankedIP, 0, len(t.m))
	for a, ms := range t.m {
		out = append(out, types.RankedIP{Address: a, LatencyMs: ms})
	}
	t.mu.RUnlock()
	slices.SortFunc(out, func(a, b types.RankedIP) int {
		if c := cmp.Compare(a.LatencyMs, b.LatencyMs); c != 0 {
			return c
		}
		return compareAddr(a.Address, b.Address)
	})
	return out
}
