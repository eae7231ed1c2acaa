// Package pipeline runs the full cycle: load or scan candidates, rank them, pick the
// fastest, persist the ranking and point the hosts file at the winner.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/moyoez/gtranslate-ipcheck/hosts"
	"github.com/moyoez/gtranslate-ipcheck/ipfile"
	"github.com/moyoez/gtranslate-ipcheck/notify"
	"github.com/moyoez/gtranslate-ipcheck/probe"
	"github.com/moyoez/gtranslate-ipcheck/scan"
	"github.com/moyoez/gtranslate-ipcheck/share"
	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

// ErrHostsWrite wraps failures to rewrite the hosts file.
var ErrHostsWrite = errors.New("failed to update hosts file")

// CandidateSource supplies an existing candidate list.
type CandidateSource interface {
	Load(ctx context.Context) ([]string, error)
}

// ResultSink persists the ranked addresses, fastest first.
type ResultSink interface {
	WriteRanked(ranked []types.RankedIP) error
}

// HostBinder maps hostnames to an address.
type HostBinder interface {
	Bind(addr string, hostnames []string) error
}

// Options are the per-process switches taken from the command line.
type Options struct {
	IPv6        bool
	AutoConfirm bool
	ForceScan   bool
	ScanOnly    bool
}

func OptionsFromFlags(c types.Config) Options {
	return Options{IPv6: c.UseIPv6, AutoConfirm: c.AutoConfirm, ForceScan: c.ForceScan, ScanOnly: c.ScanOnly}
}

// Runner holds the collaborators of one pipeline. Nil Source skips the candidate list,
// nil Sink skips persistence and nil FlushDNS skips the cache flush.
type Runner struct {
	Config   types.AppConfig
	Options  Options
	Prober   probe.Prober
	Source   CandidateSource
	Sink     ResultSink
	Binder   HostBinder
	FlushDNS func(ctx context.Context) error
	Confirm  func() bool
	Out      io.Writer
}

// New wires a Runner with the HTTP prober, the ip file source and sink and the system hosts file.
func New(cfg types.AppConfig, opts Options) (*Runner, error) {
	validator, err := probe.NewValidator(cfg.ExpectMode, cfg.ExpectBody)
	if err != nil {
		return nil, err
	}
	client := tool.NewProbeHTTPClient(cfg.VirtualHost, cfg.InsecureSkipVerify, cfg.ScanSpeed)
	r := &Runner{
		Config:   cfg,
		Options:  opts,
		Prober:   probe.NewHTTPProber(types.ProbeOptionsFromConfig(cfg), validator, client),
		Source:   ipfile.NewSource(cfg, opts.IPv6),
		Sink:     ipfile.NewSink(cfg, opts.IPv6),
		FlushDNS: hosts.FlushDNS,
		Confirm:  func() bool { return tool.Confirm(os.Stdin) },
		Out:      os.Stdout,
	}
	if b, err := hosts.NewBinder(); err == nil {
		r.Binder = b
	} else {
		tool.DefaultLogger.Warnf("Hosts binding disabled: %v", err)
	}
	return r, nil
}

// RunOnce performs one full cycle. It fails with scan.ErrNoCandidate when nothing usable
// was found, scan.ErrNoRanges when a needed scan had no valid range, ErrHostsWrite when
// the hosts file could not be written, or the context error when cancelled.
func (r *Runner) RunOnce(ctx context.Context) (types.RunReport, error) {
	report := types.RunReport{RunID: tool.NewRunID(), StartedAt: time.Now(), IPv6: r.Options.IPv6}
	log := tool.DefaultLogger.With("run", report.RunID)
	if err := notify.SendRunStart(report.RunID, report.IPv6); err != nil {
		log.Debugf("Failed to send run start notification: %v", err)
	}

	var candidates []string
	if !r.Options.ForceScan && r.Source != nil {
		list, err := r.Source.Load(ctx)
		if err != nil {
			log.Warnf("No candidate list, scanning ranges: %v", err)
		}
		candidates = list
	}
	if len(candidates) == 0 {
		found, err := r.scan(ctx)
		if err != nil {
			return r.fail(report, err)
		}
		candidates = found
		report.Scanned = true
	}

	table := r.rank(ctx, candidates)
	if table.Len() == 0 && !report.Scanned && ctx.Err() == nil {
		log.Warn("No usable address in the candidate list, scanning ranges")
		found, err := r.scan(ctx)
		if err != nil {
			return r.fail(report, err)
		}
		candidates = found
		report.Scanned = true
		table = r.rank(ctx, candidates)
	}
	report.Candidates = len(candidates)

	best, err := scan.Pick(table)
	if err != nil {
		if ctx.Err() != nil {
			return r.fail(report, ctx.Err())
		}
		return r.fail(report, err)
	}
	report.Ranked = table.Sorted()
	report.Best = best

	fmt.Fprintln(r.out(), "\nRanked by response time:")
	for _, e := range report.Ranked {
		fmt.Fprintf(r.out(), "%s %d ms\n", e.Address, e.LatencyMs)
	}
	fmt.Fprintf(r.out(), "Fastest address is %s (%d ms)\n", best.Address, best.LatencyMs)

	if r.Sink != nil {
		if err := r.Sink.WriteRanked(report.Ranked); err != nil {
			log.Errorf("Failed to save ranked list: %v", err)
		}
	}

	if !r.Options.ScanOnly {
		bound, err := r.bind(ctx, best.Address)
		report.Bound = bound
		if err != nil {
			report.FinishedAt = time.Now()
			share.SetLatestReport(report)
			return r.fail(report, err)
		}
	}

	report.FinishedAt = time.Now()
	share.SetLatestReport(report)
	if err := notify.SendRunEnd(report); err != nil {
		log.Debugf("Failed to send run end notification: %v", err)
	}
	log.Infof("Run finished in %s", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report, nil
}

func (r *Runner) scan(ctx context.Context) ([]string, error) {
	s := scan.NewScanner(r.Prober, types.ScanOptionsFromConfig(r.Config))
	set, err := s.Scan(ctx, r.Config.Ranges(r.Options.IPv6))
	if err != nil {
		return nil, err
	}
	return set.Items(), nil
}

func (r *Runner) rank(ctx context.Context, candidates []string) *scan.LatencyTable {
	if len(candidates) == 0 {
		return scan.NewLatencyTable()
	}
	tool.DefaultLogger.Infof("Ranking %d candidates", len(candidates))
	return scan.NewRanker(r.Prober, types.RankOptionsFromConfig(r.Config)).Rank(ctx, candidates)
}

// bind prints the hosts lines, asks unless AutoConfirm is set and writes them.
func (r *Runner) bind(ctx context.Context, addr string) (bool, error) {
	lines := hosts.Lines(addr, r.Config.HostNames)
	fmt.Fprintln(r.out(), "\nWriting the hosts file needs administrator rights; the lines can also be copied by hand:")
	if path, err := hosts.DefaultPath(); err == nil {
		fmt.Fprintf(r.out(), "hosts file: %s\n", path)
	}
	fmt.Fprintln(r.out())
	for _, l := range lines {
		fmt.Fprintln(r.out(), l)
	}
	fmt.Fprintln(r.out())

	if !r.Options.AutoConfirm {
		fmt.Fprint(r.out(), "Write them to the hosts file? (y/N) ")
		if r.Confirm == nil || !r.Confirm() {
			fmt.Fprintln(r.out())
			return false, nil
		}
	}
	if r.Binder == nil {
		return false, fmt.Errorf("%w: %w", ErrHostsWrite, hosts.ErrUnsupportedPlatform)
	}
	if err := r.Binder.Bind(addr, r.Config.HostNames); err != nil {
		return false, fmt.Errorf("%w: %w", ErrHostsWrite, err)
	}
	if err := notify.SendHostsBound(addr, r.Config.HostNames); err != nil {
		tool.DefaultLogger.Debugf("Failed to send hosts notification: %v", err)
	}
	if r.FlushDNS != nil {
		if err := r.FlushDNS(ctx); err != nil {
			tool.DefaultLogger.Warnf("Failed to flush DNS cache: %v", err)
		}
	}
	return true, nil
}

func (r *Runner) fail(report types.RunReport, err error) (types.RunReport, error) {
	if nerr := notify.SendRunFailed(report.RunID, err); nerr != nil {
		tool.DefaultLogger.Debugf("Failed to send run failed notification: %v", nerr)
	}
	return report, err
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}
