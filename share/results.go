package share

import (
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/moyoez/gtranslate-ipcheck/notify"
	"github.com/moyoez/gtranslate-ipcheck/tool"
	"github.com/moyoez/gtranslate-ipcheck/types"
)

const (
	ResultTTL = 24 * time.Hour // a report older than this is stale
	latestKey = "latest"
)

var (
	Reports = ttlworker.NewCache[string, types.RunReport](ResultTTL)
)

func familyKey(ipv6 bool) string {
	if ipv6 {
		return "ipv6"
	}
	return "ipv4"
}

// SetLatestReport stores report as the latest result of its address family and
// notifies when the fastest address differs from the previous report of that family.
func SetLatestReport(report types.RunReport) {
	key := familyKey(report.IPv6)
	previous, exists := GetReport(report.IPv6)

	Reports.Set(key, report)
	Reports.Set(latestKey, report)
	tool.DefaultLogger.Debugf("Set latest report %s (%s)", report.RunID, key)

	if report.Best.Address == "" {
		return
	}
	if !exists || previous.Best.Address != report.Best.Address {
		tool.DefaultLogger.Infof("Fastest address is now %s (%d ms)", report.Best.Address, report.Best.LatencyMs)
		if err := notify.SendBestChanged(previous.Best, report.Best); err != nil {
			tool.DefaultLogger.Debugf("Failed to send best changed notification: %v", err)
		}
	}
}

// GetReport returns the latest report of one address family.
func GetReport(ipv6 bool) (types.RunReport, bool) {
	r := Reports.Get(familyKey(ipv6))
	return r, r.RunID != ""
}

// GetLatestReport returns the most recent report of either family.
func GetLatestReport() (types.RunReport, bool) {
	r := Reports.Get(latestKey)
	return r, r.RunID != ""
}

// GetBest returns the fastest address of the latest report of one family.
func GetBest(ipv6 bool) (types.RankedIP, bool) {
	r, ok := GetReport(ipv6)
	if !ok || r.Best.Address == "" {
		return types.RankedIP{}, false
	}
	return r.Best, true
}

// ResetReports drops every stored report.
func ResetReports() {
	for _, k := range []string{latestKey, familyKey(false), familyKey(true)} {
		Reports.Delete(k)
	}
}
