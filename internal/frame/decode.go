package frame

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a decoded frame. It is fully populated by Decode and never modified
// afterwards.
type Record struct {
	Raw      string // the capture as received
	Adjusted string // the resynchronized string the fields were sliced from

	Syncword   string // [0,4) always Syncword
	ReceiverID string // [4,8)
	SenderID   string // [8,12) "ffff" when the display is in search mode
	U1         string // [12,14) 80 from transmitter, 10 from display in search mode
	U2         string // [14,16) looks like len (0d -> 13 bytes follow)
	U3         string // [16,18)

	TotalAh     float64 // [18,24) × Scale
	RawTotalAh  string
	U4          string  // [24,28)
	CurrentA    float64 // [28,32) × Scale
	RawCurrentA string
	Battery     string // [32,34) low battery flag
	U5          string // [34,36)
	CRC         string // [36,40) received checksum
	U6          string // [40] probably end of frame

	CRCReceived uint16
	CRCComputed uint16
	CRCResult   CRCResult
}

// IsSearch reports whether the frame was sent by a display in search mode
func (r *Record) IsSearch() bool {
	return r.SenderID == SearchSenderID
}

// TotalKWh derives the cumulative energy from the charge at the given voltage
func (r *Record) TotalKWh(volts float64) float64 {
	return r.TotalAh * volts / 1000
}

// CurrentKW derives the instantaneous power from the current at the given voltage
func (r *Record) CurrentKW(volts float64) float64 {
	return r.CurrentA * volts / 1000
}

// String returns a debug representation of the record
func (r *Record) String() string {
	return fmt.Sprintf("Record{rx=%s, tx=%s, total=%.2fAh, current=%.2fA, battery=%s, crc=%s/%04x %s}",
		r.ReceiverID, r.SenderID, r.TotalAh, r.CurrentA, r.Battery, r.CRC, r.CRCComputed, r.CRCResult)
}

// Parse resynchronizes a raw capture and decodes it
func Parse(raw string) (*Record, error) {
	adjusted, err := Resync(raw)
	if err != nil {
		return nil, err
	}
	return decode(raw, adjusted)
}

// Decode decodes a frame that is already anchored on the syncword
func Decode(adjusted string) (*Record, error) {
	return decode(adjusted, adjusted)
}

func decode(raw, adjusted string) (*Record, error) {
	adjusted = strings.ToLower(adjusted)
	if len(adjusted) < FrameNibbles {
		return nil, newTooShortError(adjusted)
	}

	rawTotal := adjusted[offTotal:offU4]
	total, err := strconv.ParseUint(rawTotal, 16, 32)
	if err != nil {
		return nil, newBadHexError(adjusted, "total", rawTotal, err)
	}

	rawCurrent := adjusted[offCurrent:offBattery]
	current, err := strconv.ParseUint(rawCurrent, 16, 16)
	if err != nil {
		return nil, newBadHexError(adjusted, "current", rawCurrent, err)
	}

	crcField := adjusted[offCRC:offU6]
	received, err := strconv.ParseUint(crcField, 16, 16)
	if err != nil {
		return nil, newBadHexError(adjusted, "crc", crcField, err)
	}

	span := adjusted[crcStart:crcEnd]
	computed, err := ChecksumHex(span)
	if err != nil {
		return nil, newBadHexError(adjusted, "crc span", span, err)
	}

	return &Record{
		Raw:         raw,
		Adjusted:    adjusted,
		Syncword:    Syncword,
		ReceiverID:  adjusted[offReceiver:offSender],
		SenderID:    adjusted[offSender:offU1],
		U1:          adjusted[offU1:offU2],
		U2:          adjusted[offU2:offU3],
		U3:          adjusted[offU3:offTotal],
		TotalAh:     float64(total) * Scale,
		RawTotalAh:  rawTotal,
		U4:          adjusted[offU4:offCurrent],
		CurrentA:    float64(current) * Scale,
		RawCurrentA: rawCurrent,
		Battery:     adjusted[offBattery:offU5],
		U5:          adjusted[offU5:offCRC],
		CRC:         crcField,
		U6:          adjusted[offU6:offEnd],
		CRCReceived: uint16(received),
		CRCComputed: computed,
		CRCResult:   ClassifyCRC(computed, uint16(received)),
	}, nil
}
