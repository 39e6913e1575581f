package analysis

import (
	"errors"
	"fmt"
)

// Kind classifies why an analysis request failed.
type Kind string

const (
	// KindNetwork: the request could not be sent or no response arrived
	// (including timeouts and cancellation).
	KindNetwork Kind = "network"
	// KindService: the service answered with a non-2xx status.
	KindService Kind = "service"
	// KindDecode: the body was not a complete, well-formed bundle.
	KindDecode Kind = "decode"
)

// Error is returned by Client.Analyze for every failure.
type Error struct {
	Kind       Kind
	StatusCode int    // set for KindService
	Message    string // human-readable, safe to display
	Err        error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// MessageOf returns the display message of err.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
