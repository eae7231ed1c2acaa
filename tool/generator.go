package tool

import (
	"github.com/google/uuid"
)

// NewRunID returns a short id used to correlate the log lines and notifications of one run.
func NewRunID() string {
	return uuid.NewString()[:8]
}
