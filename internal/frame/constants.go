package frame

// Protocol constants
const (
	Syncword     = "3475" // Marks the start of a frame body
	FrameNibbles = 41     // Minimum nibbles needed for the fixed layout
	Scale        = 0.01   // Fixed-point unit of the total and current fields
	LineVoltage  = 239    // Nominal mains voltage used to derive kWh and kW

	// SearchSenderID is the sender id used by a display looking for its transmitter
	SearchSenderID = "ffff"

	// leadInNibbles are dropped when the syncword is not at the front
	leadInNibbles = 4

	fillerNibble  = "5"
	fillerRun     = "55"
	shiftedFiller = "aa"
)

// Field offsets, in nibbles from the start of a resynchronized frame.
const (
	offReceiver = 4
	offSender   = 8
	offU1       = 12
	offU2       = 14
	offU3       = 16
	offTotal    = 18
	offU4       = 24
	offCurrent  = 28
	offBattery  = 32
	offU5       = 34
	offCRC      = 36
	offU6       = 40
	offEnd      = 41

	// crcStart and crcEnd bound the nibbles covered by the checksum
	crcStart = offSender
	crcEnd   = offCRC
)
