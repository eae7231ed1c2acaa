// Package hosts points hostnames at an address in the system hosts file.
package hosts

import (
	"bytes"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/moyoez/gtranslate-ipcheck/tool"
)

var ErrUnsupportedPlatform = errors.New("hosts file is not supported on this platform")

// DefaultPath returns the hosts file location for the running OS.
func DefaultPath() (string, error) {
	return pathFor(runtime.GOOS)
}

func pathFor(goos string) (string, error) {
	switch goos {
	case "windows":
		root := os.Getenv("SystemRoot")
		if root == "" {
			root = `C:\Windows`
		}
		return filepath.Join(root, "System32", "drivers", "etc", "hosts"), nil
	case "linux", "darwin", "freebsd", "openbsd", "netbsd", "android":
		return "/etc/hosts", nil
	default:
		return "", ErrUnsupportedPlatform
	}
}

// Binder rewrites a hosts file.
type Binder struct {
	Path string
}

// NewBinder returns a Binder for the system hosts file.
func NewBinder() (*Binder, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return &Binder{Path: path}, nil
}

// Lines returns the entries Bind writes, for printing or manual copy.
func Lines(addr string, hostnames []string) []string {
	out := make([]string, 0, len(hostnames))
	for _, h := range hostnames {
		out = append(out, addr+" "+h)
	}
	return out
}

// Bind maps every hostname to addr. Existing mappings of a hostname are replaced where
// they stand; other names sharing such a line are kept. Missing hostnames are appended.
// The file is made writable first and rewritten in place.
func (b *Binder) Bind(addr string, hostnames []string) error {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	if len(hostnames) == 0 {
		return errors.New("no hostnames to bind")
	}

	info, err := os.Stat(b.Path)
	if err != nil {
		return fmt.Errorf("failed to stat hosts file: %w", err)
	}
	if info.Mode().Perm()&0o200 == 0 {
		if err := os.Chmod(b.Path, info.Mode().Perm()|0o200); err != nil {
			return fmt.Errorf("failed to make hosts file writable: %w", err)
		}
	}
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return fmt.Errorf("failed to read hosts file: %w", err)
	}

	eol := "\n"
	if bytes.Contains(data, []byte("\r\n")) {
		eol = "\r\n"
	}
	text := strings.TrimRight(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	lines = rewrite(lines, ip.String(), hostnames)

	out := strings.Join(lines, eol) + eol
	if err := os.WriteFile(b.Path, []byte(out), info.Mode().Perm()|0o200); err != nil {
		return fmt.Errorf("failed to write hosts file: %w", err)
	}
	tool.DefaultLogger.Infof("Hosts file %s updated: %s -> %s", b.Path, strings.Join(hostnames, ", "), ip)
	return nil
}

// rewrite returns lines with each hostname mapped to addr exactly once.
func rewrite(lines []string, addr string, hostnames []string) []string {
	targets := make(map[string]string, len(hostnames))
	for _, h := range hostnames {
		targets[strings.ToLower(h)] = h
	}
	placed := make(map[string]bool, len(hostnames))

	out := make([]string, 0, len(lines)+len(hostnames))
	for _, line := range lines {
		content, comment, hasComment := strings.Cut(line, "#")
		fields := strings.Fields(content)
		if len(fields) < 2 {
			out = append(out, line)
			continue
		}
		var keep, hit []string
		for _, name := range fields[1:] {
			if h, ok := targets[strings.ToLower(name)]; ok {
				hit = append(hit, h)
			} else {
				keep = append(keep, name)
			}
		}
		if len(hit) == 0 {
			out = append(out, line)
			continue
		}
		first := len(out)
		for _, h := range hit {
			if !placed[h] {
				placed[h] = true
				out = append(out, addr+" "+h)
			}
		}
		if len(keep) > 0 {
			rest := fields[0] + " " + strings.Join(keep, " ")
			if hasComment {
				rest += " #" + comment
			}
			out = append(out, rest)
		} else if hasComment {
			// the comment stays with the first rewritten entry
			if first < len(out) {
				out[first] += " #" + comment
			} else {
				out = append(out, "#"+comment)
			}
		}
	}
	for _, h := range hostnames {
		if !placed[h] {
			placed[h] = true
			out = append(out, addr+" "+h)
		}
	}
	return out
}
