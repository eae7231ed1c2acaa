package iprange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"

	"github.com/bytedance/sonic"
	"go4.org/netipx"
)

// publishedRanges is the document format of gstatic.com/ipranges/*.json.
type publishedRanges struct {
	SyncToken    string `json:"syncToken"`
	CreationTime string `json:"creationTime"`
	Prefixes     []struct {
		IPv4Prefix string `json:"ipv4Prefix,omitempty"`
		IPv6Prefix string `json:"ipv6Prefix,omitempty"`
	} `json:"prefixes"`
}

// FetchGoogleRanges downloads Google's published ranges and returns the blocks that serve
// Google's own APIs: everything in googURL that is not customer cloud space in cloudURL.
func FetchGoogleRanges(ctx context.Context, client *http.Client, googURL, cloudURL string, ipv6 bool) ([]string, error) {
	goog, err := fetchRangeSet(ctx, client, googURL, ipv6)
	if err != nil {
		return nil, err
	}
	cloud, err := fetchRangeSet(ctx, client, cloudURL, ipv6)
	if err != nil {
		return nil, err
	}
	var b netipx.IPSetBuilder
	b.AddSet(goog)
	b.RemoveSet(cloud)
	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("failed to build range set: %w", err)
	}
	prefixes := set.Prefixes()
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.String())
	}
	return out, nil
}

func fetchRangeSet(ctx context.Context, client *http.Client, url string, ipv6 bool) (*netipx.IPSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	var doc publishedRanges
	if err := sonic.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", url, err)
	}
	return buildSet(doc, ipv6)
}

func buildSet(doc publishedRanges, ipv6 bool) (*netipx.IPSet, error) {
	var b netipx.IPSetBuilder
	for _, e := range doc.Prefixes {
		s := e.IPv4Prefix
		if ipv6 {
			s = e.IPv6Prefix
		}
		if s == "" {
			continue
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			continue
		}
		b.AddPrefix(p.Masked())
	}
	return b.IPSet()
}
