package frame

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDecodeError_Is(t *testing.T) {
	err := fmt.Errorf("line 3: %w", newTooShortError("3475"))

	if !errors.Is(err, ErrTooShort) {
		t.Error("errors.Is(wrapped too short, ErrTooShort) = false")
	}
	if errors.Is(err, ErrBadHex) {
		t.Error("errors.Is(wrapped too short, ErrBadHex) = true")
	}
	if !IsTooShort(err) || IsBadHex(err) || IsResyncFailed(err) {
		t.Error("IsXxx helpers disagree with the error type")
	}
	if TypeOf(err) != ErrTypeTooShort {
		t.Errorf("TypeOf() = %s, want TooShort", TypeOf(err))
	}
	if TypeOf(errors.New("other")) != 0 {
		t.Error("TypeOf(non decode error) should be 0")
	}
}

func TestDecodeError_Message(t *testing.T) {
	cause := errors.New("invalid syntax")
	err := newBadHexError("x", "total", "00g3e8", cause)

	msg := err.Error()
	for _, want := range []string{"BadHex", "total", "00g3e8", "invalid syntax"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, should contain %q", msg, want)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap() should expose the cause")
	}
}

func TestErrorType_Reason(t *testing.T) {
	tests := []struct {
		et     ErrorType
		name   string
		reason string
	}{
		{ErrTypeResyncFailed, "ResyncFailed", "resync_failed"},
		{ErrTypeTooShort, "TooShort", "too_short"},
		{ErrTypeBadHex, "BadHex", "bad_hex"},
		{ErrorType(99), "ErrorType(99)", "unknown"},
	}
	for _, tt := range tests {
		if tt.et.String() != tt.name || tt.et.Reason() != tt.reason {
			t.Errorf("%d: got %s/%s, want %s/%s", tt.et, tt.et.String(), tt.et.Reason(), tt.name, tt.reason)
		}
	}
}
