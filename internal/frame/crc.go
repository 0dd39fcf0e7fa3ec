package frame

import (
	"encoding/hex"

	"github.com/sigurn/crc16"
)

// CRC16SPIFujitsu is the checksum parameter set used by the link
// (identical to CRC-16/AUG-CCITT).
var CRC16SPIFujitsu = crc16.Params{
	Poly:   0x1021,
	Init:   0x1D0F,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x0000,
	Check:  0xE5CC,
	Name:   "CRC-16/SPI-FUJITSU",
}

var crcTable = crc16.MakeTable(CRC16SPIFujitsu)

// Checksum computes CRC-16/SPI-FUJITSU over data
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}

// ChecksumHex computes the checksum over the bytes encoded by a hex string
func ChecksumHex(s string) (uint16, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return 0, err
	}
	return Checksum(data), nil
}

// CRCResult classifies a received checksum against the computed one
type CRCResult int

const (
	// Invalid means the frame must be discarded
	Invalid CRCResult = iota
	// Valid means the received checksum matches
	Valid
	// ShiftedLeft means the received checksum is the computed one shifted left by a bit
	ShiftedLeft
	// ShiftedRight means the received checksum is the computed one shifted right by a bit
	ShiftedRight
)

// String returns the name of the result
func (r CRCResult) String() string {
	switch r {
	case Valid:
		return "Valid"
	case ShiftedLeft:
		return "ShiftedLeft"
	case ShiftedRight:
		return "ShiftedRight"
	default:
		return "Invalid"
	}
}

// Label returns the lower-case label used in metrics and JSON
func (r CRCResult) Label() string {
	switch r {
	case Valid:
		return "valid"
	case ShiftedLeft:
		return "shifted_left"
	case ShiftedRight:
		return "shifted_right"
	default:
		return "invalid"
	}
}

// Plausible reports whether the frame is worth showing: valid, or valid apart from
// a shifted checksum.
func (r CRCResult) Plausible() bool {
	return r != Invalid
}

// ClassifyCRC compares the received checksum with the computed one
func ClassifyCRC(computed, received uint16) CRCResult {
	switch {
	case computed == received:
		return Valid
	case received == computed<<1:
		return ShiftedLeft
	case received == computed>>1:
		return ShiftedRight
	default:
		return Invalid
	}
}
