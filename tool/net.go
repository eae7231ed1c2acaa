package tool

import (
	"net/netip"
	"strings"
)

// CheckIP reports whether s is a plain address of the wanted family.
// IPv4-mapped IPv6 addresses and zoned addresses are rejected.
func CheckIP(s string, ipv6 bool) bool {
	ip, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil || ip.Zone() != "" {
		return false
	}
	if ipv6 {
		return ip.Is6() && !ip.Is4In6()
	}
	return ip.Is4()
}

// NormalizeIP returns the canonical text form of a valid address, or "" when invalid.
func NormalizeIP(s string) string {
	ip, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return ip.String()
}
