package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPick(t *testing.T) {
	table := NewLatencyTable()
	table.TryAdd("A", 120)
	table.TryAdd("B", 45)
	table.TryAdd("C", 300)

	best, err := Pick(table)
	require.NoError(t, err)
	assert.Equal(t, "B", best.Address)
	assert.Equal(t, int64(45), best.LatencyMs)
}

func TestPickEmpty(t *testing.T) {
	_, err := Pick(NewLatencyTable())
	assert.ErrorIs(t, err, ErrNoCandidate)

	_, err = Pick(nil)
	assert.ErrorIs(t, err, ErrNoCandidate)
}

func TestPickTieBreaksByAddress(t *testing.T) {
	table := NewLatencyTable()
	table.TryAdd("142.250.10.2", 30)
	table.TryAdd("142.250.9.200", 30)
	table.TryAdd("142.250.10.1", 31)

	for range 20 {
		best, err := Pick(table)
		require.NoError(t, err)
		assert.Equal(t, "142.250.9.200", best.Address)
	}
}

func TestLatencyTableInsertIfAbsent(t *testing.T) {
	table := NewLatencyTable()
	assert.True(t, table.TryAdd("192.0.2.1", 50))
	assert.False(t, table.TryAdd("192.0.2.1", 10))
	got, _ := table.Get("192.0.2.1")
	assert.Equal(t, int64(50), got)
}

func TestCandidateSet(t *testing.T) {
	s := NewCandidateSet("192.0.2.10", "192.0.2.9")
	assert.True(t, s.TryAdd("2001:db8::1"))
	assert.False(t, s.TryAdd("192.0.2.9"))

	other := NewCandidateSet("192.0.2.1", "192.0.2.10")
	s.Merge(other)
	assert.Equal(t, []string{"192.0.2.1", "192.0.2.9", "192.0.2.10", "2001:db8::1"}, s.Items())
	assert.Equal(t, 4, s.Count())
}
