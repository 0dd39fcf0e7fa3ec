package capture

import (
	"bufio"
	"io"
	"strings"
)

// MaxLineSize bounds a single capture line.
const MaxLineSize = 1 << 20

// Scanner yields trimmed, non-empty lines with their 1-based line numbers.
type Scanner struct {
	sc     *bufio.Scanner
	lineNo int
	text   string
}

// NewScanner wraps r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Scanner{sc: sc}
}

// Scan advances to the next non-empty line. It returns false at end of input or
// on error; check Err afterwards.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		s.lineNo++
		text := strings.TrimSpace(s.sc.Text())
		if text == "" {
			continue
		}
		s.text = text
		return true
	}
	return false
}

// Text returns the current trimmed line.
func (s *Scanner) Text() string { return s.text }

// LineNo returns the 1-based number of the current line in the input.
func (s *Scanner) LineNo() int { return s.lineNo }

// Err returns the first non-EOF error encountered.
func (s *Scanner) Err() error { return s.sc.Err() }
