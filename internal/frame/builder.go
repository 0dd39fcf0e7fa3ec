package frame

import (
	"fmt"
	"strings"
)

// Fields holds the values needed to render a frame. Hex fields must already have
// their protocol width; numeric fields are given in raw units (0.01 Ah, 0.01 A).
type Fields struct {
	ReceiverID string // 4 nibbles
	SenderID   string // 4 nibbles
	U1         string // 2 nibbles
	U2         string // 2 nibbles
	U3         string // 2 nibbles
	Total      uint32 // 24-bit raw total
	U4         string // 4 nibbles
	Current    uint16 // raw current
	Battery    string // 2 nibbles
	U5         string // 2 nibbles
	U6         string // 1 nibble
}

// DefaultFields returns the field values seen on a transmitter frame, with zero
// readings.
func DefaultFields() Fields {
	return Fields{
		ReceiverID: "0000",
		SenderID:   "0000",
		U1:         "80",
		U2:         "0d",
		U3:         "00",
		U4:         "0000",
		Battery:    "00",
		U5:         "00",
		U6:         "0",
	}
}

// Build renders a resynchronized frame with a correct checksum.
//
// Frame Structure:
//
//	[0,4)    Syncword
//	[4,36)   fields in protocol order
//	[36,40)  CRC-16/SPI-FUJITSU over [8,36)
//	[40]     U6
func Build(f Fields) (string, error) {
	if f.Total > 0xFFFFFF {
		return "", fmt.Errorf("total out of range: %d (max %d)", f.Total, 0xFFFFFF)
	}

	widths := []struct {
		name  string
		value string
		width int
	}{
		{"receiver id", f.ReceiverID, 4},
		{"sender id", f.SenderID, 4},
		{"u1", f.U1, 2},
		{"u2", f.U2, 2},
		{"u3", f.U3, 2},
		{"u4", f.U4, 4},
		{"battery", f.Battery, 2},
		{"u5", f.U5, 2},
		{"u6", f.U6, 1},
	}
	for _, w := range widths {
		if len(w.value) != w.width || !isHex(w.value) {
			return "", fmt.Errorf("field %s must be %d hex nibbles, got %q", w.name, w.width, w.value)
		}
	}

	var b strings.Builder
	b.WriteString(Syncword)
	b.WriteString(f.ReceiverID)
	b.WriteString(f.SenderID)
	b.WriteString(f.U1)
	b.WriteString(f.U2)
	b.WriteString(f.U3)
	fmt.Fprintf(&b, "%06x", f.Total)
	b.WriteString(f.U4)
	fmt.Fprintf(&b, "%04x", f.Current)
	b.WriteString(f.Battery)
	b.WriteString(f.U5)

	body := strings.ToLower(b.String())
	crc, err := ChecksumHex(body[crcStart:crcEnd])
	if err != nil {
		return "", fmt.Errorf("failed to compute checksum: %w", err)
	}

	return fmt.Sprintf("%s%04x%s", body, crc, strings.ToLower(f.U6)), nil
}

// WithCRC returns a copy of frame with its checksum field replaced
func WithCRC(frame string, crc uint16) (string, error) {
	if len(frame) < FrameNibbles {
		return "", newTooShortError(frame)
	}
	return fmt.Sprintf("%s%04x%s", frame[:offCRC], crc, frame[offU6:]), nil
}
