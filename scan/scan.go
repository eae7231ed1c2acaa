// Package scan finds candidate addresses in CIDR ranges and ranks them by latency.
package scan

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/moyoez/gtranslate-ipcheck/iprange"
	"github.com/moyoez/gtranslate-ipcheck/probe"
	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

const (
	defaultConcurrency = 80
	progressEvery      = 1000
)

// Scanner probes every usable address of a list of ranges until the quota is met.
type Scanner struct {
	prober probe.Prober
	opts   types.ScanOptions
}

func NewScanner(p probe.Prober, opts types.ScanOptions) *Scanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Scanner{prober: p, opts: opts}
}

// Scan walks ranges in order and returns every address that passed a probe.
// Each entry may be a CIDR block, an a-b address range or a single address.
// Once the quota is reached no new probe is started; probes already running finish
// and may still add. Ranges that fail to parse are skipped; ErrNoRanges is returned
// only when none of them parse. Cancelling ctx ends the scan early without an error.
func (s *Scanner) Scan(ctx context.Context, ranges []string) (*CandidateSet, error) {
	start := time.Now()
	defer func() { phaseDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds()) }()

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var limiter *rate.Limiter
	if s.opts.RateLimitPPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.opts.RateLimitPPS), max(s.opts.RateLimitPPS+10, 20))
	}

	var (
		valid     []iprange.Range
		rangeErrs error
	)
	for _, raw := range ranges {
		rs, err := iprange.ParseLine(raw)
		if err != nil {
			tool.DefaultLogger.Warnf("Skipping range: %v", err)
			rangeErrs = multierr.Append(rangeErrs, err)
			continue
		}
		valid = append(valid, rs...)
	}
	result := NewCandidateSet()
	if len(valid) == 0 {
		if rangeErrs != nil {
			return result, fmt.Errorf("%w: %w", ErrNoRanges, rangeErrs)
		}
		return result, ErrNoRanges
	}

	var scanned atomic.Int64
	for _, r := range valid {
		if scanCtx.Err() != nil {
			break
		}
		tool.DefaultLogger.Infof("Scanning %s (%s addresses)", r, r.Count().String())
		acc := s.scanRange(scanCtx, cancel, r, result, limiter, &scanned)
		result.Merge(acc)
	}

	if rangeErrs != nil {
		tool.DefaultLogger.Warnf("%d of %d ranges skipped", len(multierr.Errors(rangeErrs)), len(ranges))
	}
	tool.DefaultLogger.Infof("Scan finished: probed %d addresses, found %d candidates in %s",
		scanned.Load(), result.Count(), time.Since(start).Round(time.Millisecond))
	return result, nil
}

// scanRange probes one range into its own accumulator. accepted holds the
// candidates of the ranges already finished and only counts toward the quota.
func (s *Scanner) scanRange(ctx context.Context, stop context.CancelFunc, r iprange.Range,
	accepted *CandidateSet, limiter *rate.Limiter, scanned *atomic.Int64) *CandidateSet {
	acc := NewCandidateSet()
	sem := semaphore.NewWeighted(int64(s.opts.Concurrency))
	probeCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup

	for ip := range r.All() {
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				sem.Release(1)
				break
			}
		}
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			defer sem.Release(1)

			res := s.prober.ProbeOnce(probeCtx, addr)
			scanProbes.Inc()
			if n := scanned.Add(1); n%progressEvery == 0 {
				tool.DefaultLogger.Infof("Scanned %d IPs, found %d", n, accepted.Count()+acc.Count())
			}
			if !res.Success {
				if res.Err != nil {
					tool.DefaultLogger.Debugf("%v", res.Err)
				}
				return
			}
			if acc.TryAdd(addr) {
				scanCandidates.Inc()
				tool.DefaultLogger.Infof("Found candidate %s (%d ms)", addr, res.ElapsedMillis)
			}
			if s.opts.Quota > 0 && accepted.Count()+acc.Count() >= s.opts.Quota {
				stop()
			}
		}(ip.String())
	}
	wg.Wait()
	return acc
}
