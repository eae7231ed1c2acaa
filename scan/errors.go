package scan

import (
	"errors"

	"github.com/moyoez/gtranslate-ipcheck/iprange"
)

var (
	// ErrNoCandidate is returned when a run ends without any usable address.
	ErrNoCandidate = errors.New("no usable candidate found")
	// ErrNoRanges is returned when none of the configured ranges could be parsed.
	ErrNoRanges = errors.New("no parseable ranges")
)

// InvalidRangeError is the error reported for a range that is skipped.
type InvalidRangeError = iprange.InvalidRangeError
