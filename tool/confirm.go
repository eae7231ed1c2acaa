package tool

import (
	"bufio"
	"io"
	"strings"
)

// Confirm reads one line from r and reports whether it starts with y or Y.
func Confirm(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	line = strings.TrimSpace(line)
	return strings.HasPrefix(strings.ToLower(line), "y")
}
