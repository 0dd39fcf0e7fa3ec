package capture

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoFrame is returned for lines that carry no "{len}nibbles," field.
var ErrNoFrame = errors.New("no frame field in line")

// Default plausible capture length bounds, inclusive.
const (
	DefaultMinLength = 191
	DefaultMaxLength = 219
)

// frameField matches the first "{len}nibbles," group of a capture line.
var frameField = regexp.MustCompile(`\{(\d+?)\}(.+?),`)

// Line is one receiver capture: the leading date field and the first frame field.
type Line struct {
	Date    string // first comma-separated field, verbatim
	Length  int    // the decimal count inside the braces
	Nibbles string // raw hex characters following the braces
}

// ParseLine extracts the date and first frame field from a CSV capture line.
func ParseLine(line string) (*Line, error) {
	m := frameField.FindStringSubmatch(line)
	if m == nil {
		return nil, ErrNoFrame
	}

	length, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("%w: bad length %q: %v", ErrNoFrame, m[1], err)
	}

	date, _, _ := strings.Cut(line, ",")
	return &Line{
		Date:    date,
		Length:  length,
		Nibbles: m[2],
	}, nil
}

// Plausible reports whether min <= Length <= max.
func (l *Line) Plausible(min, max int) bool {
	return l.Length >= min && l.Length <= max
}
