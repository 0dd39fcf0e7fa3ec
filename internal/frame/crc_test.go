package frame

import "testing"

func TestChecksum_CheckValue(t *testing.T) {
	if got := Checksum([]byte("123456789")); got != CRC16SPIFujitsu.Check {
		t.Errorf("Checksum(123456789) = 0x%04x, want 0x%04x", got, CRC16SPIFujitsu.Check)
	}
	if CRC16SPIFujitsu.Check != 0xE5CC {
		t.Errorf("check value = 0x%04x, want 0xe5cc", CRC16SPIFujitsu.Check)
	}
}

func TestChecksumHex(t *testing.T) {
	tests := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{in: "3c4d", want: 0x5d51},
		{in: txFrame[8:36], want: 0xbf74},
		{in: "", want: 0x1d0f},
		{in: "abc", wantErr: true},
		{in: "zz", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ChecksumHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ChecksumHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ChecksumHex(%q) = 0x%04x, want 0x%04x", tt.in, got, tt.want)
		}
	}
}

func TestClassifyCRC(t *testing.T) {
	tests := []struct {
		computed uint16
		received uint16
		want     CRCResult
	}{
		{0xbf74, 0xbf74, Valid},
		{0xbf74, 0x7ee8, ShiftedLeft},
		{0xbf74, 0x5fba, ShiftedRight},
		{0xbf74, 0x0000, Invalid},
		{0x0000, 0x0000, Valid},
		{0x0001, 0x0002, ShiftedLeft},
		{0x0002, 0x0001, ShiftedRight},
	}

	for _, tt := range tests {
		if got := ClassifyCRC(tt.computed, tt.received); got != tt.want {
			t.Errorf("ClassifyCRC(0x%04x, 0x%04x) = %s, want %s", tt.computed, tt.received, got, tt.want)
		}
	}
}

func TestCRCResult_Labels(t *testing.T) {
	tests := []struct {
		r         CRCResult
		name      string
		label     string
		plausible bool
	}{
		{Valid, "Valid", "valid", true},
		{ShiftedLeft, "ShiftedLeft", "shifted_left", true},
		{ShiftedRight, "ShiftedRight", "shifted_right", true},
		{Invalid, "Invalid", "invalid", false},
	}

	for _, tt := range tests {
		if tt.r.String() != tt.name || tt.r.Label() != tt.label || tt.r.Plausible() != tt.plausible {
			t.Errorf("%d: got %s/%s/%v, want %s/%s/%v", tt.r,
				tt.r.String(), tt.r.Label(), tt.r.Plausible(), tt.name, tt.label, tt.plausible)
		}
	}
}
