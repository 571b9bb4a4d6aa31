package qpdf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTimeout indicates the engine did not exit within the configured timeout.
var ErrTimeout = errors.New("qpdf: timed out")

// ExitError reports a non-zero engine exit. Args may contain credentials and are
// never included in the error message.
type ExitError struct {
	Args   []string
	Status int
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("qpdf: exit status %d", e.Status)
	}
	return fmt.Sprintf("qpdf: exit status %d: %s", e.Status, msg)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// StatusOf returns the engine exit status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Status, true
	}
	return 0, false
}
