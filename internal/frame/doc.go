// Package frame decodes hex-nibble frames captured from the wireless link between an
// energy-monitor transmitter and its display.
//
// The transmitter periodically reports the cumulative ampere-hours and the
// instantaneous current seen by its clamp. A capture front-end renders each frame as a
// string of hexadecimal nibbles. The front of those strings is unreliable: the first
// nibbles of the preamble are garbled, the preamble itself is a run of filler nibbles,
// and the whole value is occasionally shifted by one bit because the sampler locked on
// one bit period early or late.
//
// # Frame Layout
//
// After resynchronization every frame is at least 41 nibbles long and starts with the
// syncword. All offsets are nibble offsets:
//
//	[0,4)    syncword      always "3475"
//	[4,8)    receiver id
//	[8,12)   sender id     "ffff" when the display is in search mode
//	[12,14)  u1            opaque (80 from transmitter, 10 from display in search mode)
//	[14,16)  u2            opaque, looks like the remaining length in bytes
//	[16,18)  u3            opaque
//	[18,24)  total         cumulative charge, units of 0.01 Ah
//	[24,28)  u4            opaque
//	[28,32)  current       instantaneous current, units of 0.01 A
//	[32,34)  battery       low battery flag
//	[34,36)  u5            opaque
//	[36,40)  crc           CRC-16/SPI-FUJITSU over nibbles [8,36)
//	[40]     u6            presumed terminator
//
// # Resynchronization
//
// Resync anchors a raw capture on the syncword. It accepts frames that already start
// with the syncword, frames with four garbled nibbles followed by a run of "5" filler,
// and frames whose filler reads as "aa" because the capture is shifted by one bit. The
// shifted case is corrected by shifting the whole value left or right by one bit with
// explicit width rules (see ShiftLeft and ShiftRight). Anything else is rejected.
//
// # Checksum
//
// The checksum is CRC-16 with polynomial 0x1021, initial value 0x1D0F, no reflection and
// no output xor (CRC-16/SPI-FUJITSU, also known as CRC-16/AUG-CCITT). The received
// checksum can itself carry the one-bit shift artifact, so the result is classified as
// Valid, ShiftedLeft, ShiftedRight or Invalid rather than a plain boolean.
//
// # Usage Example
//
//	rec, err := frame.Parse(nibbles)
//	if err != nil {
//	    if errors.Is(err, frame.ErrResyncFailed) {
//	        // noise, skip it
//	    }
//	    return err
//	}
//	if rec.CRCResult == frame.Valid {
//	    fmt.Printf("%s: %.2f Ah, %.2f A\n", rec.SenderID, rec.TotalAh, rec.CurrentA)
//	}
//
// # Thread Safety
//
// Every function in this package is a pure function of its input and package
// constants. The CRC table is built once at init and only read afterwards.
package frame
