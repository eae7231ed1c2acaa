package probe

import (
	"bytes"
	"fmt"
	"strings"
)

// ResponseValidator decides whether a response body comes from the intended backend.
type ResponseValidator interface {
	Validate(body []byte) bool
}

// ValidatorFunc adapts a function to ResponseValidator.
type ValidatorFunc func(body []byte) bool

func (f ValidatorFunc) Validate(body []byte) bool { return f(body) }

// Contains accepts bodies that contain marker.
func Contains(marker string) ResponseValidator {
	m := []byte(marker)
	return ValidatorFunc(func(body []byte) bool {
		return bytes.Contains(body, m)
	})
}

// Equals accepts bodies equal to payload, ignoring surrounding whitespace.
func Equals(payload string) ResponseValidator {
	p := []byte(strings.TrimSpace(payload))
	return ValidatorFunc(func(body []byte) bool {
		return bytes.Equal(bytes.TrimSpace(body), p)
	})
}

// NewValidator builds the validator named by the expectMode config value.
func NewValidator(mode, expect string) (ResponseValidator, error) {
	switch strings.ToLower(mode) {
	case "", "contains":
		return Contains(expect), nil
	case "equals":
		return Equals(expect), nil
	default:
		return nil, fmt.Errorf("unknown expect mode %q (want contains or equals)", mode)
	}
}
