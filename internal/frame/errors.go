package frame

import (
	"errors"
	"fmt"
)

// ErrorType represents the reason a frame could not be decoded
type ErrorType int

const (
	// ErrTypeResyncFailed indicates no known preamble correction matched
	ErrTypeResyncFailed ErrorType = iota + 1
	// ErrTypeTooShort indicates the frame lacks nibbles for the fixed layout
	ErrTypeTooShort
	// ErrTypeBadHex indicates a numeric field holds non-hexadecimal characters
	ErrTypeBadHex
)

// String returns a short name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeResyncFailed:
		return "ResyncFailed"
	case ErrTypeTooShort:
		return "TooShort"
	case ErrTypeBadHex:
		return "BadHex"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Reason returns the lower-case label used in logs and metrics
func (et ErrorType) Reason() string {
	switch et {
	case ErrTypeResyncFailed:
		return "resync_failed"
	case ErrTypeTooShort:
		return "too_short"
	case ErrTypeBadHex:
		return "bad_hex"
	default:
		return "unknown"
	}
}

// DecodeError is returned for every frame that does not produce a Record
type DecodeError struct {
	Type    ErrorType // Category of failure
	Message string    // Human-readable detail
	Input   string    // The string being decoded when the failure occurred
	Err     error     // Underlying error (if any)
}

// Sentinel errors for use with errors.Is
var (
	ErrResyncFailed = &DecodeError{Type: ErrTypeResyncFailed, Message: "no known preamble pattern"}
	ErrTooShort     = &DecodeError{Type: ErrTypeTooShort, Message: "frame too short"}
	ErrBadHex       = &DecodeError{Type: ErrTypeBadHex, Message: "non-hex characters"}
)

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DecodeError of the same type
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

func newResyncError(input, message string) *DecodeError {
	return &DecodeError{Type: ErrTypeResyncFailed, Message: message, Input: input}
}

func newTooShortError(input string) *DecodeError {
	return &DecodeError{
		Type:    ErrTypeTooShort,
		Message: fmt.Sprintf("frame too short: %d nibbles (minimum %d)", len(input), FrameNibbles),
		Input:   input,
	}
}

func newBadHexError(input, field, value string, err error) *DecodeError {
	return &DecodeError{
		Type:    ErrTypeBadHex,
		Message: fmt.Sprintf("field %s is not hex: %q", field, value),
		Input:   input,
		Err:     err,
	}
}

// IsResyncFailed checks if an error is a resynchronization failure
func IsResyncFailed(err error) bool {
	return errors.Is(err, ErrResyncFailed)
}

// IsTooShort checks if an error is a short frame
func IsTooShort(err error) bool {
	return errors.Is(err, ErrTooShort)
}

// IsBadHex checks if an error is a non-hex numeric field
func IsBadHex(err error) bool {
	return errors.Is(err, ErrBadHex)
}

// TypeOf returns the ErrorType carried by err, or 0 if err is not a DecodeError
func TypeOf(err error) ErrorType {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Type
	}
	return 0
}
