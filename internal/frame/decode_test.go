package frame

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDecode(t *testing.T) {
	rec, err := Decode(txFrame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Syncword", rec.Syncword, Syncword},
		{"ReceiverID", rec.ReceiverID, "1a2b"},
		{"SenderID", rec.SenderID, "3c4d"},
		{"U1", rec.U1, "80"},
		{"U2", rec.U2, "0d"},
		{"U3", rec.U3, "01"},
		{"RawTotalAh", rec.RawTotalAh, "0003e8"},
		{"U4", rec.U4, "0000"},
		{"RawCurrentA", rec.RawCurrentA, "00fa"},
		{"Battery", rec.Battery, "00"},
		{"U5", rec.U5, "00"},
		{"CRC", rec.CRC, "bf74"},
		{"U6", rec.U6, "0"},
		{"Raw", rec.Raw, txFrame},
		{"Adjusted", rec.Adjusted, txFrame},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}

	if !almostEqual(rec.TotalAh, 10.00) {
		t.Errorf("TotalAh = %v, want 10.00", rec.TotalAh)
	}
	if !almostEqual(rec.CurrentA, 2.50) {
		t.Errorf("CurrentA = %v, want 2.50", rec.CurrentA)
	}
	if rec.CRCComputed != 0xbf74 || rec.CRCReceived != 0xbf74 {
		t.Errorf("crc computed=0x%04x received=0x%04x, want 0xbf74", rec.CRCComputed, rec.CRCReceived)
	}
	if rec.CRCResult != Valid {
		t.Errorf("CRCResult = %s, want Valid", rec.CRCResult)
	}
	if rec.IsSearch() {
		t.Error("IsSearch() = true for a transmitter frame")
	}
}

func TestDecode_SearchFrame(t *testing.T) {
	rec, err := Decode(searchFrame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !rec.IsSearch() {
		t.Error("IsSearch() = false, want true")
	}
	if !almostEqual(rec.TotalAh, 745.65) {
		t.Errorf("TotalAh = %v, want 745.65", rec.TotalAh)
	}
	if rec.Battery != "01" {
		t.Errorf("Battery = %q, want 01", rec.Battery)
	}
	if rec.CRCResult != Valid {
		t.Errorf("CRCResult = %s, want Valid", rec.CRCResult)
	}
}

func TestDecode_CRCClassification(t *testing.T) {
	tests := []struct {
		name string
		crc  uint16
		want CRCResult
	}{
		{"valid", 0xbf74, Valid},
		{"received shifted left", 0x7ee8, ShiftedLeft},
		{"received shifted right", 0x5fba, ShiftedRight},
		{"corrupt", 0x1234, Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := WithCRC(txFrame, tt.crc)
			if err != nil {
				t.Fatalf("WithCRC() error = %v", err)
			}
			rec, err := Decode(f)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if rec.CRCResult != tt.want {
				t.Errorf("CRCResult = %s, want %s", rec.CRCResult, tt.want)
			}
			if rec.CRCComputed != 0xbf74 {
				t.Errorf("CRCComputed = 0x%04x, want 0xbf74", rec.CRCComputed)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrTooShort},
		{"syncword only", Syncword, ErrTooShort},
		{"one nibble short", txFrame[:40], ErrTooShort},
		{"non-hex total", txFrame[:20] + "g" + txFrame[21:], ErrBadHex},
		{"non-hex current", txFrame[:29] + "x" + txFrame[30:], ErrBadHex},
		{"non-hex crc", txFrame[:37] + "q" + txFrame[38:], ErrBadHex},
		{"non-hex in crc span", txFrame[:12] + "zz" + txFrame[14:], ErrBadHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Decode(tt.input)
			if err == nil {
				t.Fatalf("Decode() = %v, want error", rec)
			}
			if rec != nil {
				t.Errorf("Decode() returned a record alongside error %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("error %T is not a *DecodeError", err)
			}
			if de.Input != tt.input {
				t.Errorf("DecodeError.Input = %q, want %q", de.Input, tt.input)
			}
		})
	}
}

func TestDecode_OpaqueFieldsNotValidated(t *testing.T) {
	// The receiver id and terminator are outside every numeric field and the CRC span.
	f := txFrame[:4] + "wxyz" + txFrame[8:40] + "z"
	rec, err := Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.ReceiverID != "wxyz" || rec.U6 != "z" {
		t.Errorf("opaque fields = %q/%q, want wxyz/z", rec.ReceiverID, rec.U6)
	}
	if rec.CRCResult != Valid {
		t.Errorf("CRCResult = %s, want Valid", rec.CRCResult)
	}
}

func TestParse(t *testing.T) {
	raw := "beef5555" + txFrame
	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if rec.Raw != raw {
		t.Errorf("Raw = %q, want %q", rec.Raw, raw)
	}
	if rec.Adjusted != txFrame {
		t.Errorf("Adjusted = %q, want %q", rec.Adjusted, txFrame)
	}
	if rec.CRCResult != Valid {
		t.Errorf("CRCResult = %s, want Valid", rec.CRCResult)
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ErrorType
	}{
		{"noise", "0123456789abcdef", ErrTypeResyncFailed},
		{"truncated after resync", "beef55" + txFrame[:30], ErrTypeTooShort},
		{"bad hex after resync", "beef55" + txFrame[:18] + "zzzzzz" + txFrame[24:], ErrTypeBadHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if got := TypeOf(err); got != tt.want {
				t.Errorf("TypeOf(Parse()) = %s, want %s (err = %v)", got, tt.want, err)
			}
		})
	}
}

func TestRecord_Derived(t *testing.T) {
	rec, err := Decode(txFrame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := rec.TotalKWh(LineVoltage); !almostEqual(got, 2.39) {
		t.Errorf("TotalKWh() = %v, want 2.39", got)
	}
	if got := rec.CurrentKW(LineVoltage); !almostEqual(got, 0.5975) {
		t.Errorf("CurrentKW() = %v, want 0.5975", got)
	}
}

func TestBuild(t *testing.T) {
	f := Fields{
		ReceiverID: "1a2b",
		SenderID:   "3c4d",
		U1:         "80",
		U2:         "0d",
		U3:         "01",
		Total:      1000,
		U4:         "0000",
		Current:    250,
		Battery:    "00",
		U5:         "00",
		U6:         "0",
	}
	got, err := Build(f)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got != txFrame {
		t.Errorf("Build() = %s, want %s", got, txFrame)
	}

	bad := f
	bad.SenderID = "3c4"
	if _, err := Build(bad); err == nil {
		t.Error("Build() with a 3-nibble sender id should fail")
	}

	bad = f
	bad.Total = 0x1000000
	if _, err := Build(bad); err == nil {
		t.Error("Build() with an out of range total should fail")
	}
}

func TestBuild_DefaultFields(t *testing.T) {
	f := DefaultFields()
	f.Total = 123456
	f.Current = 789

	s, err := Build(f)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	rec, err := Decode(s)
	if err != nil {
		t.Fatalf("Decode(Build()) error = %v", err)
	}
	if rec.CRCResult != Valid {
		t.Errorf("CRCResult = %s, want Valid", rec.CRCResult)
	}
	if !almostEqual(rec.TotalAh, 1234.56) || !almostEqual(rec.CurrentA, 7.89) {
		t.Errorf("readings = %v Ah / %v A, want 1234.56 / 7.89", rec.TotalAh, rec.CurrentA)
	}
}
