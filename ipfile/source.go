// Package ipfile reads candidate lists and writes ranked results.
package ipfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

// ErrEmptyList is returned when neither the local file nor the remote list yields an address.
var ErrEmptyList = errors.New("candidate list is empty")

// Source loads an existing candidate list: the local file first, the remote list
// when the file is missing or empty.
type Source struct {
	Path      string
	RemoteURL string
	IPv6      bool
	Client    *http.Client
}

func NewSource(cfg types.AppConfig, ipv6 bool) *Source {
	return &Source{
		Path:      cfg.CandidateFile(ipv6),
		RemoteURL: cfg.RemoteList(ipv6),
		IPv6:      ipv6,
		Client:    tool.GetRemoteHttpClient(),
	}
}

// Load returns the distinct valid addresses of the selected family in file order.
func (s *Source) Load(ctx context.Context) ([]string, error) {
	addrs, err := s.loadFile()
	switch {
	case err == nil && len(addrs) > 0:
		tool.DefaultLogger.Infof("Found %d addresses in %s", len(addrs), s.Path)
		return addrs, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if s.RemoteURL == "" {
		return nil, ErrEmptyList
	}
	tool.DefaultLogger.Infof("No local candidates in %s, fetching %s", s.Path, s.RemoteURL)
	addrs, err = s.loadRemote(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote list: %w", err)
	}
	if len(addrs) == 0 {
		return nil, ErrEmptyList
	}
	tool.DefaultLogger.Infof("Found %d addresses in remote list", len(addrs))
	return addrs, nil
}

func (s *Source) loadFile() ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseAddresses(f, s.IPv6)
}

func (s *Source) loadRemote(ctx context.Context) ([]string, error) {
	client := s.Client
	if client == nil {
		client = tool.GetRemoteHttpClient()
	}
	ctx, cancel := context.WithTimeout(ctx, tool.RemoteListTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.RemoteURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return ParseAddresses(resp.Body, s.IPv6)
}

// ParseAddresses reads one address per line; a line may also hold a comma separated list.
// Blank lines, # comments, invalid and wrong-family entries are skipped.
func ParseAddresses(r io.Reader, ipv6 bool) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, field := range strings.Split(line, ",") {
			if !tool.CheckIP(field, ipv6) {
				continue
			}
			ip := tool.NormalizeIP(field)
			if _, dup := seen[ip]; dup {
				continue
			}
			seen[ip] = struct{}{}
			out = append(out, ip)
		}
	}
	return out, sc.Err()
}
