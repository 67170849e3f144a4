package bitsink

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes sink failures
type ErrorCode int

const (
	CodeSinkFinalized ErrorCode = 1
	CodeSinkReleased  ErrorCode = 2
)

func (c ErrorCode) String() string {
	switch c {
	case CodeSinkFinalized:
		return "SinkFinalized"
	case CodeSinkReleased:
		return "SinkReleased"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// StreamError represents a failure reported by a sink. Every failure is
// terminal for the stream being written: the caller should Reset the sink
// and discard the writer
type StreamError struct {
	Code    ErrorCode
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsStreamError checks if an error is a StreamError and returns it
func IsStreamError(err error) (*StreamError, bool) {
	var se *StreamError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Common errors
var (
	ErrSinkFinalized = &StreamError{Code: CodeSinkFinalized, Message: "sink already finalized"}
	ErrSinkReleased  = &StreamError{Code: CodeSinkReleased, Message: "sink released, call Reset before reuse"}
)
