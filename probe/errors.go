package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TimeoutError means the probe did not finish within its timeout.
type TimeoutError struct {
	Address string
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("probe %s timed out: %v", e.Address, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// UnreachableError means the connection, TLS handshake or request failed.
type UnreachableError struct {
	Address string
	Err     error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("probe %s unreachable: %v", e.Address, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// classify wraps a transport error into TimeoutError or UnreachableError.
func classify(addr string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{Address: addr, Err: err}
	}
	return &UnreachableError{Address: addr, Err: err}
}

// IsTimeout reports whether err is a probe timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsUnreachable reports whether err is a connection level probe failure.
func IsUnreachable(err error) bool {
	var ue *UnreachableError
	return errors.As(err, &ue)
}
