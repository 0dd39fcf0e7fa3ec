package report

import (
	"fmt"
	"strings"

	"github.com/muurk/ampwatch/internal/frame"
)

// Text renders a record on one line:
//
//	DS:1a2b PM:3c4d u1:80 u2:0d u3:01 total:0003e8=2.390, u4:0000 current:00fa=0.598, BAT_LOW: 00 u5: 00 crc:bf74 CRC: Valid
//
// DS is the receiving display, PM the power meter transmitter. kWh and kW use volts.
func Text(r *frame.Record, volts float64) string {
	return textBody(r, volts) + r.CRCResult.String()
}

func textBody(r *frame.Record, volts float64) string {
	return fmt.Sprintf("DS:%s PM:%s u1:%s u2:%s u3:%s total:%s=%.3f, u4:%s current:%s=%.3f, BAT_LOW: %s u5: %s crc:%s CRC: ",
		r.ReceiverID, r.SenderID,
		r.U1, r.U2, r.U3,
		r.RawTotalAh, r.TotalKWh(volts),
		r.U4,
		r.RawCurrentA, r.CurrentKW(volts),
		r.Battery, r.U5, r.CRC,
	)
}

// Detailed renders a record as a multi-line block.
func Detailed(r *frame.Record, volts float64) string {
	var b strings.Builder

	b.WriteString("=== Frame ===\n")
	b.WriteString(fmt.Sprintf("Raw:         %s\n", r.Raw))
	b.WriteString(fmt.Sprintf("Adjusted:    %s\n", r.Adjusted))
	b.WriteString("\n")

	b.WriteString("=== Addressing ===\n")
	b.WriteString(fmt.Sprintf("Receiver:    %s\n", r.ReceiverID))
	if r.IsSearch() {
		b.WriteString(fmt.Sprintf("Sender:      %s (display in search mode)\n", r.SenderID))
	} else {
		b.WriteString(fmt.Sprintf("Sender:      %s\n", r.SenderID))
	}
	b.WriteString(fmt.Sprintf("Unknown:     u1=%s u2=%s u3=%s u4=%s u5=%s u6=%s\n",
		r.U1, r.U2, r.U3, r.U4, r.U5, r.U6))
	b.WriteString("\n")

	b.WriteString("=== Readings ===\n")
	b.WriteString(fmt.Sprintf("Total:       %.2f Ah (0x%s) = %.3f kWh @ %gV\n",
		r.TotalAh, r.RawTotalAh, r.TotalKWh(volts), volts))
	b.WriteString(fmt.Sprintf("Current:     %.2f A (0x%s) = %.3f kW @ %gV\n",
		r.CurrentA, r.RawCurrentA, r.CurrentKW(volts), volts))
	b.WriteString(fmt.Sprintf("Battery low: %s\n", r.Battery))
	b.WriteString("\n")

	b.WriteString("=== Checksum ===\n")
	b.WriteString(fmt.Sprintf("Received:    0x%04x\n", r.CRCReceived))
	b.WriteString(fmt.Sprintf("Computed:    0x%04x (%s over nibbles 8..35)\n", r.CRCComputed, frame.CRC16SPIFujitsu.Name))
	b.WriteString(fmt.Sprintf("Result:      %s\n", r.CRCResult))

	return b.String()
}
