package iprange

import (
	"errors"
	"net/netip"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(r Range) []string {
	var out []string
	for ip := range r.All() {
		out = append(out, ip.String())
	}
	return out
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"", "not-a-range", "10.0.0.0", "10.0.0.0/33", "fe80::1%eth0/64"} {
		_, err := Parse(s)
		var ire *InvalidRangeError
		require.Error(t, err, s)
		assert.True(t, errors.As(err, &ire), "expected InvalidRangeError for %q", s)
	}
}

func TestEnumerateSlash30(t *testing.T) {
	r, err := Parse("203.0.113.0/30")
	require.NoError(t, err)
	assert.Equal(t, []string{"203.0.113.1", "203.0.113.2"}, collect(r))
	assert.EqualValues(t, 2, r.Count().Int64())
}

func TestEnumerateCountsIPv4(t *testing.T) {
	for bits := 16; bits <= 30; bits++ {
		r := FromPrefix(netip.PrefixFrom(netip.MustParseAddr("10.20.0.0"), bits))
		want := int64(1)<<(32-bits) - 2
		n := int64(0)
		for range r.All() {
			n++
		}
		assert.Equal(t, want, n, "/%d", bits)
		assert.Equal(t, want, r.Count().Int64(), "/%d", bits)
	}
}

func TestEnumerateExcludesNetworkAndBroadcast(t *testing.T) {
	r, err := Parse("192.0.2.77/24")
	require.NoError(t, err)
	ips := collect(r)
	require.Len(t, ips, 254)
	assert.Equal(t, "192.0.2.1", ips[0])
	assert.Equal(t, "192.0.2.254", ips[len(ips)-1])
	assert.NotContains(t, ips, "192.0.2.0")
	assert.NotContains(t, ips, "192.0.2.255")
}

func TestEnumerateSmallPrefixes(t *testing.T) {
	r, err := Parse("198.51.100.4/31")
	require.NoError(t, err)
	assert.Equal(t, []string{"198.51.100.4", "198.51.100.5"}, collect(r))

	r, err = Parse("198.51.100.9/32")
	require.NoError(t, err)
	assert.Equal(t, []string{"198.51.100.9"}, collect(r))

	r, err = Parse("255.255.255.254/31")
	require.NoError(t, err)
	assert.Equal(t, []string{"255.255.255.254", "255.255.255.255"}, collect(r))
}

func TestEnumerateIPv6(t *testing.T) {
	r, err := Parse("2001:db8::/126")
	require.NoError(t, err)
	assert.True(t, r.Is6())
	assert.Equal(t, []string{"2001:db8::1", "2001:db8::2", "2001:db8::3"}, collect(r))

	r, err = Parse("2404:6800:4008:c15::0/112")
	require.NoError(t, err)
	assert.EqualValues(t, 65535, r.Count().Int64())
}

func TestEnumerateRestartable(t *testing.T) {
	r, err := Parse("203.0.113.0/28")
	require.NoError(t, err)
	first := collect(r)
	second := collect(r)
	assert.Equal(t, first, second)
	assert.True(t, slices.IsSortedFunc(first, func(a, b string) int {
		return netip.MustParseAddr(a).Compare(netip.MustParseAddr(b))
	}))
}

func TestEnumerateEarlyStop(t *testing.T) {
	r, err := Parse("10.0.0.0/8")
	require.NoError(t, err)
	n := 0
	for range r.All() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
