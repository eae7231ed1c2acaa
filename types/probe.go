package types

import "time"

// ProbeResult is the outcome of one probe attempt against one address.
type ProbeResult struct {
	Address       string `json:"address"`
	Success       bool   `json:"success"`
	ElapsedMillis int64  `json:"elapsedMillis"`
	Err           error  `json:"-"`
}

// RankedIP is one row of a latency table, used for output and the status API.
type RankedIP struct {
	Address   string `json:"address"`
	LatencyMs int64  `json:"latency_ms"`
}

// RunReport summarises one pipeline run.
type RunReport struct {
	RunID      string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	IPv6       bool       `json:"ipv6"`
	Scanned    bool       `json:"scanned"` // true when candidates came from a range scan
	Candidates int        `json:"candidates"`
	Ranked     []RankedIP `json:"ranked"`
	Best       RankedIP   `json:"best"`
	Bound      bool       `json:"bound"` // true when the hosts file was rewritten
}
