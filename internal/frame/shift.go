package frame

import (
	"fmt"
	"math/big"
	"strings"
)

// ShiftLeft shifts the hex value s left by one bit and keeps its width.
// The bit carried out of the leading nibble is discarded, so the result always has
// len(s) nibbles.
func ShiftLeft(s string) (string, error) {
	n, err := parseBig(s)
	if err != nil {
		return "", err
	}
	n.Lsh(n, 1)
	return lowNibbles(n, len(s)), nil
}

// ShiftRight shifts the hex value s right by one bit.
// After the shift the leading nibble only holds the shifted-in zero bit and three
// stale bits of filler, so it is dropped and the result has len(s)-1 nibbles.
func ShiftRight(s string) (string, error) {
	n, err := parseBig(s)
	if err != nil {
		return "", err
	}
	n.Rsh(n, 1)
	return lowNibbles(n, len(s)-1), nil
}

func parseBig(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty hex value")
	}
	if !isHex(s) {
		return nil, fmt.Errorf("invalid hex value %q", s)
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex value %q", s)
	}
	return n, nil
}

// lowNibbles renders the lowest width nibbles of n, zero padded.
func lowNibbles(n *big.Int, width int) string {
	if width <= 0 {
		return ""
	}
	text := n.Text(16)
	if len(text) >= width {
		return text[len(text)-width:]
	}
	return strings.Repeat("0", width-len(text)) + text
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
