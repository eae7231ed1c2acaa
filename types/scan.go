package types

import "time"

// ProbeOptions configures a single HTTP probe.
type ProbeOptions struct {
	VirtualHost        string
	Path               string
	Query              string
	Port               int // 0 or 443 keeps the default https port
	Timeout            time.Duration
	ICMPPrecheck       bool
	InsecureSkipVerify bool
}

// ScanOptions configures the scan phase.
// Concurrency: max probes in flight.
// Quota: distinct good addresses after which dispatching stops; 0 = scan everything.
// RateLimitPPS: probe dispatch rate (per second); 0 = no limit.
type ScanOptions struct {
	Concurrency  int
	Quota        int
	RateLimitPPS int
}

// RankOptions configures the latency ranking phase.
type RankOptions struct {
	Concurrency int
	Quota       int
	RetryCount  int
}

// ProbeOptionsFromConfig derives probe options from the loaded config.
func ProbeOptionsFromConfig(c AppConfig) ProbeOptions {
	return ProbeOptions{
		VirtualHost:        c.VirtualHost,
		Path:               c.ProbePath,
		Query:              c.ProbeQuery,
		Port:               c.ProbePort,
		Timeout:            time.Duration(c.ScanTimeout) * time.Second,
		ICMPPrecheck:       c.ICMPPrecheck,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}

// ScanOptionsFromConfig derives scan options from the loaded config.
func ScanOptionsFromConfig(c AppConfig) ScanOptions {
	return ScanOptions{Concurrency: c.ScanSpeed, Quota: c.ScanLimit, RateLimitPPS: c.ScanRatePPS}
}

// RankOptionsFromConfig derives rank options from the loaded config.
func RankOptionsFromConfig(c AppConfig) RankOptions {
	return RankOptions{Concurrency: c.ScanSpeed, Quota: c.ScanLimit, RetryCount: c.RetryCount}
}
