package frame

import "strings"

// Resync anchors a raw capture on the syncword.
//
// Patterns are tried in order and the first match wins:
//  1. the capture already starts with the syncword
//  2. four garbled lead-in nibbles and "aa" filler: the capture is shifted by one bit,
//     so the remainder is shifted left, then right, and checked again
//  3. four garbled lead-in nibbles, zero or more "55" filler bytes, then the syncword
//
// Anything else fails with ErrTypeResyncFailed. The returned string is lower case.
func Resync(raw string) (string, error) {
	msg := strings.ToLower(raw)

	if strings.HasPrefix(msg, Syncword) {
		return msg, nil
	}

	if len(msg) < leadInNibbles {
		return "", newResyncError(raw, "capture shorter than the preamble lead-in")
	}
	msg = msg[leadInNibbles:]

	if strings.HasPrefix(msg, shiftedFiller) {
		if left, err := ShiftLeft(msg); err == nil {
			if stripped, ok := anchored(left); ok {
				return stripped, nil
			}
		}
		if right, err := ShiftRight(msg); err == nil {
			if stripped, ok := anchored(right); ok {
				return stripped, nil
			}
		}
		return "", newResyncError(raw, "no one-bit shift recovers the syncword")
	}

	// Filler comes in whole "55" bytes; zero bytes is allowed.
	if stripped, ok := anchored(msg); ok {
		if (len(msg)-len(stripped))%2 != 0 {
			return "", newResyncError(raw, "filler run is not a whole number of bytes")
		}
		return stripped, nil
	}
	if strings.HasPrefix(msg, fillerRun) {
		return "", newResyncError(raw, "filler run not followed by syncword")
	}
	return "", newResyncError(raw, "unknown preamble pattern")
}

// anchored strips leading filler and reports whether the syncword follows.
func anchored(s string) (string, bool) {
	stripped := strings.TrimLeft(s, fillerNibble)
	return stripped, strings.HasPrefix(stripped, Syncword)
}
