package notify

import (
	"fmt"
	"strings"

	"github.com/moyoez/gtranslate-ipcheck/types"
)

// SendRunStart announces a pipeline run.
func SendRunStart(runID string, ipv6 bool) error {
	return Send(&types.Notification{
		Type:    types.NotifyTypeRunStart,
		Title:   "Run Started",
		Message: fmt.Sprintf("run %s started (ipv6=%t)", runID, ipv6),
		Data:    map[string]any{"runId": runID, "ipv6": ipv6},
	})
}

// SendRunEnd reports a finished run; the ranked list is truncated to MaxNotifyRanked.
func SendRunEnd(report types.RunReport) error {
	ranked := report.Ranked
	if len(ranked) > MaxNotifyRanked {
		ranked = ranked[:MaxNotifyRanked]
	}
	return Send(&types.Notification{
		Type:    types.NotifyTypeRunEnd,
		Title:   "Run Finished",
		Message: fmt.Sprintf("fastest address %s (%d ms)", report.Best.Address, report.Best.LatencyMs),
		Data: map[string]any{
			"runId":       report.RunID,
			"ipv6":        report.IPv6,
			"scanned":     report.Scanned,
			"candidates":  report.Candidates,
			"ranked":      ranked,
			"totalRanked": len(report.Ranked),
			"best":        report.Best,
			"bound":       report.Bound,
		},
	})
}

// SendRunFailed reports a run that produced no usable address.
func SendRunFailed(runID string, err error) error {
	return Send(&types.Notification{
		Type:    types.NotifyTypeRunFailed,
		Title:   "Run Failed",
		Message: err.Error(),
		Data:    map[string]any{"runId": runID},
	})
}

// SendBestChanged reports a new fastest address. previous is empty on the first run.
func SendBestChanged(previous, current types.RankedIP) error {
	return Send(&types.Notification{
		Type:    types.NotifyTypeBestChanged,
		Title:   "Fastest Address Changed",
		Message: fmt.Sprintf("%s -> %s (%d ms)", previous.Address, current.Address, current.LatencyMs),
		Data:    map[string]any{"previous": previous, "current": current},
	})
}

// SendHostsBound reports a hosts file update.
func SendHostsBound(addr string, hostnames []string) error {
	return Send(&types.Notification{
		Type:    types.NotifyTypeHostsBound,
		Title:   "Hosts Updated",
		Message: fmt.Sprintf("%s -> %s", strings.Join(hostnames, ", "), addr),
		Data:    map[string]any{"address": addr, "hostNames": hostnames},
	})
}
