package scan

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moyoez/gtranslate-ipcheck/probe"
	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

const defaultRetryCount = 5

// Ranker measures the best-of-N latency of each candidate.
type Ranker struct {
	prober probe.Prober
	opts   types.RankOptions
}

func NewRanker(p probe.Prober, opts types.RankOptions) *Ranker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.RetryCount <= 0 {
		opts.RetryCount = defaultRetryCount
	}
	return &Ranker{prober: p, opts: opts}
}

// Rank probes every candidate RetryCount times in a row and records the fastest
// successful attempt. Candidates with no successful attempt are left out.
// When the table reaches the quota, candidates that have not started are skipped.
// A fault while ranking one candidate never affects the others.
func (r *Ranker) Rank(ctx context.Context, candidates []string) *LatencyTable {
	start := time.Now()
	defer func() { phaseDuration.WithLabelValues("rank").Observe(time.Since(start).Seconds()) }()

	rankCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	table := NewLatencyTable()
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for _, addr := range candidates {
		if rankCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if rankCtx.Err() != nil {
				return nil
			}
			r.rankOne(ctx, addr, table)
			if r.opts.Quota > 0 && table.Len() >= r.opts.Quota {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()

	tool.DefaultLogger.Infof("Rank finished: %d of %d candidates usable in %s",
		table.Len(), len(candidates), time.Since(start).Round(time.Millisecond))
	return table
}

// rankOne runs the attempts for addr. Attempts stop early only when ctx itself is
// cancelled; reaching the quota lets a started candidate finish.
func (r *Ranker) rankOne(ctx context.Context, addr string, table *LatencyTable) {
	defer func() {
		if p := recover(); p != nil {
			tool.DefaultLogger.Errorf("Ranking %s panicked: %v", addr, p)
		}
	}()

	probeCtx := context.WithoutCancel(ctx)
	best := int64(-1)
	for attempt := 1; attempt <= r.opts.RetryCount; attempt++ {
		if attempt > 1 && ctx.Err() != nil {
			break
		}
		res := r.prober.ProbeOnce(probeCtx, addr)
		if !res.Success {
			tool.DefaultLogger.Debugf("Rank %s attempt %d/%d failed: %v", addr, attempt, r.opts.RetryCount, res.Err)
			continue
		}
		if best < 0 || res.ElapsedMillis < best {
			best = res.ElapsedMillis
		}
	}
	if best < 0 {
		rankExcluded.Inc()
		tool.DefaultLogger.Debugf("Excluding %s: no successful attempt", addr)
		return
	}
	if table.TryAdd(addr, best) {
		rankedAddresses.Inc()
		tool.DefaultLogger.Infof("%s latency %d ms", addr, best)
	}
}
