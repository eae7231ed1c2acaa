// Package probe issues single HTTPS reachability/latency probes against raw addresses.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

// maxBodySize caps how much of a response is read for validation.
const maxBodySize = 1 << 20

// Prober performs one probe against one address. It never retries.
type Prober interface {
	ProbeOnce(ctx context.Context, addr string) types.ProbeResult
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, addr string) types.ProbeResult

func (f ProberFunc) ProbeOnce(ctx context.Context, addr string) types.ProbeResult {
	return f(ctx, addr)
}

// HTTPProber requests a fixed path on the address with the virtual host's Host header and
// SNI, and accepts the address when the body passes the validator.
type HTTPProber struct {
	opts      types.ProbeOptions
	client    *http.Client
	validator ResponseValidator
}

// NewHTTPProber creates a prober. A nil client gets one from tool.NewProbeHTTPClient.
func NewHTTPProber(opts types.ProbeOptions, validator ResponseValidator, client *http.Client) *HTTPProber {
	if client == nil {
		client = tool.NewProbeHTTPClient(opts.VirtualHost, opts.InsecureSkipVerify, 0)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 4 * time.Second
	}
	return &HTTPProber{opts: opts, client: client, validator: validator}
}

// ProbeOnce probes addr once. Transport failures come back as TimeoutError or
// UnreachableError; a response that fails validation is Success=false with no error.
func (p *HTTPProber) ProbeOnce(ctx context.Context, addr string) types.ProbeResult {
	res := types.ProbeResult{Address: addr}

	urlStr, err := tool.BuildProbeURL(addr, p.opts.Port, p.opts.Path, p.opts.Query)
	if err != nil {
		res.Err = &UnreachableError{Address: addr, Err: fmt.Errorf("failed to build probe url: %w", err)}
		observe(outcomeUnreachable, 0)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	start := time.Now()
	if p.opts.ICMPPrecheck {
		if err := quickICMPProbe(ctx, addr, min(icmpProbeTimeout, p.opts.Timeout)); err != nil {
			res.Err = &UnreachableError{Address: addr, Err: fmt.Errorf("icmp precheck: %w", err)}
			observe(outcomeUnreachable, 0)
			return res
		}
		// latency is the HTTP exchange only
		start = time.Now()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		res.Err = &UnreachableError{Address: addr, Err: err}
		observe(outcomeUnreachable, 0)
		return res
	}
	req.Host = p.opts.VirtualHost

	resp, err := p.client.Do(req)
	if err != nil {
		res.Err = classify(addr, err)
		observe(outcomeOf(res.Err), 0)
		return res
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Debugf("Failed to close response body from %s: %v", addr, err)
		}
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	res.ElapsedMillis = time.Since(start).Milliseconds()
	if err != nil {
		res.Err = classify(addr, err)
		observe(outcomeOf(res.Err), 0)
		return res
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		tool.DefaultLogger.Debugf("probe %s: unexpected status %s", addr, resp.Status)
		observe(outcomeMismatch, 0)
		return res
	}
	res.Success = p.validator == nil || p.validator.Validate(body)
	if res.Success {
		observe(outcomeSuccess, res.ElapsedMillis)
	} else {
		observe(outcomeMismatch, 0)
	}
	return res
}

func outcomeOf(err error) string {
	if IsTimeout(err) {
		return outcomeTimeout
	}
	return outcomeUnreachable
}
