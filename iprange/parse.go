package iprange

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"go.uber.org/multierr"
	"go4.org/netipx"
)

// ParseLine turns one line of a range list into CIDR blocks. Accepted forms:
//
//	142.250.0.0/15
//	142.250.1.0-142.250.3.255
//	142.250.1.7
//
// Empty lines and # comments return nil, nil.
func ParseLine(line string) ([]Range, error) {
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return nil, nil
	}
	switch {
	case strings.Contains(line, "/"):
		r, err := Parse(line)
		if err != nil {
			return nil, err
		}
		return []Range{r}, nil
	case strings.Contains(line, "-"):
		ipr, err := netipx.ParseIPRange(line)
		if err != nil {
			return nil, &InvalidRangeError{Range: line, Err: err}
		}
		prefixes := ipr.Prefixes()
		out := make([]Range, 0, len(prefixes))
		for _, p := range prefixes {
			out = append(out, FromPrefix(p))
		}
		return out, nil
	default:
		ip, err := netip.ParseAddr(line)
		if err != nil {
			return nil, &InvalidRangeError{Range: line, Err: err}
		}
		return []Range{FromPrefix(netip.PrefixFrom(ip, ip.BitLen()))}, nil
	}
}

// ParseList reads a range list. Bad lines are skipped and returned together as one error.
func ParseList(r io.Reader) ([]string, error) {
	var (
		out  []string
		errs error
	)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		ranges, err := ParseLine(scanner.Text())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		for _, rg := range ranges {
			out = append(out, rg.String())
		}
	}
	if err := scanner.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return out, errs
}
