package scan

import (
	"net/netip"
	"slices"
	"sync"
)

// CandidateSet is a concurrency-safe set of addresses that passed a probe.
type CandidateSet struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

func NewCandidateSet(addrs ...string) *CandidateSet {
	s := &CandidateSet{items: make(map[string]struct{}, len(addrs))}
	for _, a := range addrs {
		s.items[a] = struct{}{}
	}
	return s
}

// TryAdd inserts addr if absent and reports whether it was inserted.
func (s *CandidateSet) TryAdd(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[addr]; ok {
		return false
	}
	s.items[addr] = struct{}{}
	return true
}

func (s *CandidateSet) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *CandidateSet) Contains(addr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[addr]
	return ok
}

// Merge adds every address of other.
func (s *CandidateSet) Merge(other *CandidateSet) {
	if other == nil || other == s {
		return
	}
	for _, a := range other.Items() {
		s.TryAdd(a)
	}
}

// Items returns the addresses in ascending numeric order.
func (s *CandidateSet) Items() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.items))
	for a := range s.items {
		out = append(out, a)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, compareAddr)
	return out
}

// compareAddr orders parseable addresses numerically (IPv4 before IPv6) and
// everything else lexically after them.
func compareAddr(a, b string) int {
	ia, errA := netip.ParseAddr(a)
	ib, errB := netip.ParseAddr(b)
	switch {
	case errA == nil && errB == nil:
		return ia.Compare(ib)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
