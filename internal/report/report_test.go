package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/pipeline"
)

const txFrame = "34751a2b3c4d800d010003e8000000fa0000bf740"

func reading(t *testing.T, date string, crc uint16) pipeline.Reading {
	t.Helper()
	f, err := frame.WithCRC(txFrame, crc)
	if err != nil {
		t.Fatalf("WithCRC() error = %v", err)
	}
	rec, err := frame.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return pipeline.Reading{Date: date, Record: rec}
}

func TestText(t *testing.T) {
	rd := reading(t, "d", 0xbf74)

	got := Text(rd.Record, frame.LineVoltage)
	want := "DS:1a2b PM:3c4d u1:80 u2:0d u3:01 total:0003e8=2.390, u4:0000 current:00fa=0.598, BAT_LOW: 00 u5: 00 crc:bf74 CRC: Valid"
	if got != want {
		t.Errorf("Text() =\n%s\nwant\n%s", got, want)
	}

	if got := Text(rd.Record, 230); !strings.Contains(got, "total:0003e8=2.300,") {
		t.Errorf("Text() at 230V = %s", got)
	}
}

func TestDetailed(t *testing.T) {
	rd := reading(t, "d", 0x7ee8)
	got := Detailed(rd.Record, frame.LineVoltage)

	for _, want := range []string{
		"Adjusted:    " + rd.Record.Adjusted,
		"Sender:      3c4d\n",
		"Total:       10.00 Ah (0x0003e8) = 2.390 kWh @ 239V",
		"Received:    0x7ee8",
		"Computed:    0xbf74",
		"Result:      ShiftedLeft",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Detailed() missing %q in:\n%s", want, got)
		}
	}
}

func TestJSON(t *testing.T) {
	rd := reading(t, "2024-01-05 10:00:00", 0xbf74)

	data, err := JSON(rd, frame.LineVoltage)
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if bytes.Contains(data, []byte("\n")) {
		t.Error("JSON() output should be a single line")
	}

	doc, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if doc.Date != rd.Date || doc.SenderID != "3c4d" || doc.CRCResult != "valid" {
		t.Errorf("document = %+v", doc)
	}
	if doc.TotalAh != 10 || doc.CRCComputed != "bf74" || doc.BatteryLow {
		t.Errorf("document values = %+v", doc)
	}
}

func TestPrinter_Filtering(t *testing.T) {
	tests := []struct {
		name      string
		crc       uint16
		validOnly bool
		printed   bool
	}{
		{"valid", 0xbf74, false, true},
		{"shifted left", 0x7ee8, false, true},
		{"shifted right", 0x5fba, false, true},
		{"invalid", 0x1234, false, false},
		{"valid with valid-only", 0xbf74, true, true},
		{"shifted with valid-only", 0x7ee8, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPrinter(&buf, PrinterOptions{ValidOnly: tt.validOnly})

			if err := p.Handle(context.Background(), reading(t, "d", tt.crc)); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if (buf.Len() > 0) != tt.printed {
				t.Errorf("printed = %v (%q), want %v", buf.Len() > 0, buf.String(), tt.printed)
			}
		})
	}
}

func TestPrinter_Dedup(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, PrinterOptions{})
	ctx := context.Background()

	seq := []pipeline.Reading{
		reading(t, "10:00", 0xbf74),
		reading(t, "10:00", 0xbf74), // repeat of the same capture
		reading(t, "10:00", 0x1234), // invalid, never printed
		reading(t, "10:00", 0xbf74), // still identical to the last printed line
		reading(t, "10:01", 0xbf74),
		reading(t, "10:00", 0xbf74), // differs from the last printed line again
	}
	for _, rd := range seq {
		if err := p.Handle(ctx, rd); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("printed %d lines, want 3:\n%s", len(lines), buf.String())
	}
	for i, prefix := range []string{"10:00: DS:", "10:01: DS:", "10:00: DS:"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
	if p.Last() != lines[2] {
		t.Errorf("Last() = %q, want %q", p.Last(), lines[2])
	}
}

func TestPrinter_Formats(t *testing.T) {
	rd := reading(t, "d", 0xbf74)

	var buf bytes.Buffer
	p := NewPrinter(&buf, PrinterOptions{Format: "JSON"})
	if err := p.Handle(context.Background(), rd); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"sender_id":"3c4d"`) {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	p = NewPrinter(&buf, PrinterOptions{Format: FormatDetailed})
	if err := p.Handle(context.Background(), rd); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "d:\n=== Frame ===") {
		t.Errorf("detailed output = %q", buf.String())
	}
}

func TestPrinter_Color(t *testing.T) {
	rd := reading(t, "d", 0xbf74)

	var buf bytes.Buffer
	p := NewPrinter(&buf, PrinterOptions{Color: true})
	if err := p.Handle(context.Background(), rd); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("coloured output has no escape sequence: %q", buf.String())
	}
	if strings.Contains(p.Last(), "\x1b[") {
		t.Error("Last() should hold the plain line")
	}
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		mode string
		want bool
	}{
		{"always", true},
		{"never", false},
		{"auto", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ColorEnabled(tt.mode, &buf); got != tt.want {
			t.Errorf("ColorEnabled(%q, buffer) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}
