// Package iprange expands address blocks into the host addresses a scan visits.
package iprange

import (
	"fmt"
	"iter"
	"math/big"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// InvalidRangeError reports a block that is not network/prefix.
type InvalidRangeError struct {
	Range string
	Err   error
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %q: %v", e.Range, e.Err)
}

func (e *InvalidRangeError) Unwrap() error { return e.Err }

// Range is a parsed CIDR block.
type Range struct {
	prefix netip.Prefix
}

// Parse validates a CIDR string. Host bits are ignored: 10.0.0.7/24 is 10.0.0.0/24.
func Parse(cidr string) (Range, error) {
	s := strings.TrimSpace(cidr)
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Range{}, &InvalidRangeError{Range: cidr, Err: err}
	}
	if p.Addr().Zone() != "" {
		return Range{}, &InvalidRangeError{Range: cidr, Err: fmt.Errorf("zoned address")}
	}
	return Range{prefix: p.Masked()}, nil
}

// FromPrefix wraps an already parsed prefix.
func FromPrefix(p netip.Prefix) Range {
	return Range{prefix: p.Masked()}
}

func (r Range) Prefix() netip.Prefix { return r.prefix }

func (r Range) String() string { return r.prefix.String() }

// Is6 reports whether the block is IPv6.
func (r Range) Is6() bool { return r.prefix.Addr().Is6() }

// bounds returns the first and last usable host address.
// IPv4 blocks up to /30 drop the network and broadcast address, /31 and /32 keep every address.
// IPv6 blocks drop the subnet-router anycast (network) address, /127 and /128 keep every address.
func (r Range) bounds() (first, last netip.Addr) {
	ipr := netipx.RangeOfPrefix(r.prefix)
	first, last = ipr.From(), ipr.To()
	hostBits := r.prefix.Addr().BitLen() - r.prefix.Bits()
	if hostBits < 2 {
		return first, last
	}
	first = first.Next()
	if r.prefix.Addr().Is4() {
		last = last.Prev()
	}
	return first, last
}

// All yields the usable host addresses in ascending order.
// The sequence is lazy and can be ranged over any number of times.
func (r Range) All() iter.Seq[netip.Addr] {
	return func(yield func(netip.Addr) bool) {
		if !r.prefix.IsValid() {
			return
		}
		first, last := r.bounds()
		for ip := first; ip.IsValid() && ip.Compare(last) <= 0; ip = ip.Next() {
			if !yield(ip) {
				return
			}
		}
	}
}

// Count returns how many addresses All yields.
func (r Range) Count() *big.Int {
	if !r.prefix.IsValid() {
		return new(big.Int)
	}
	first, last := r.bounds()
	a := new(big.Int).SetBytes(first.AsSlice())
	b := new(big.Int).SetBytes(last.AsSlice())
	return b.Sub(b, a).Add(b, big.NewInt(1))
}
