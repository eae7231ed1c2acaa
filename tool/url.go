package tool

import (
	"net"
	"net/netip"
	"net/url"
	"strconv"
)

// BuildProbeURL builds the https URL for a probe against a raw address.
// IPv6 literals are bracketed; port 0 or 443 is left implicit.
func BuildProbeURL(addr string, port int, path, rawQuery string) (string, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return "", err
	}
	host := ip.String()
	switch {
	case port != 0 && port != 443:
		host = net.JoinHostPort(host, strconv.Itoa(port))
	case ip.Is6():
		host = "[" + host + "]"
	}
	u := url.URL{Scheme: "https", Host: host, Path: path}
	if rawQuery != "" {
		q, err := url.ParseQuery(rawQuery)
		if err != nil {
			return "", err
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
