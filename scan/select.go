package scan

import "github.com/moyoez/gtranslate-ipcheck/types"

// Pick returns the fastest entry of t. Equal latencies resolve to the lowest address.
func Pick(t *LatencyTable) (types.RankedIP, error) {
	if t.Len() == 0 {
		return types.RankedIP{}, ErrNoCandidate
	}
	return t.Sorted()[0], nil
}
