package report

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/muurk/ampwatch/internal/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is the flat JSON form of a reading, shared by the printer, the MQTT
// publisher and the HTTP API.
type Document struct {
	Date        string  `json:"date"`
	ReceiverID  string  `json:"receiver_id"`
	SenderID    string  `json:"sender_id"`
	Search      bool    `json:"search"`
	TotalAh     float64 `json:"total_ah"`
	TotalKWh    float64 `json:"total_kwh"`
	CurrentA    float64 `json:"current_a"`
	CurrentKW   float64 `json:"current_kw"`
	Battery     string  `json:"battery"`
	BatteryLow  bool    `json:"battery_low"`
	CRC         string  `json:"crc"`
	CRCComputed string  `json:"crc_computed"`
	CRCResult   string  `json:"crc_result"`
	U1          string  `json:"u1"`
	U2          string  `json:"u2"`
	U3          string  `json:"u3"`
	U4          string  `json:"u4"`
	U5          string  `json:"u5"`
	U6          string  `json:"u6"`
	Raw         string  `json:"raw"`
	Adjusted    string  `json:"adjusted"`
}

// NewDocument flattens a reading. kWh and kW use volts.
func NewDocument(rd pipeline.Reading, volts float64) Document {
	r := rd.Record
	return Document{
		Date:        rd.Date,
		ReceiverID:  r.ReceiverID,
		SenderID:    r.SenderID,
		Search:      r.IsSearch(),
		TotalAh:     r.TotalAh,
		TotalKWh:    r.TotalKWh(volts),
		CurrentA:    r.CurrentA,
		CurrentKW:   r.CurrentKW(volts),
		Battery:     r.Battery,
		BatteryLow:  r.Battery != "00",
		CRC:         r.CRC,
		CRCComputed: fmt.Sprintf("%04x", r.CRCComputed),
		CRCResult:   r.CRCResult.Label(),
		U1:          r.U1,
		U2:          r.U2,
		U3:          r.U3,
		U4:          r.U4,
		U5:          r.U5,
		U6:          r.U6,
		Raw:         r.Raw,
		Adjusted:    r.Adjusted,
	}
}

// JSON encodes a reading as a single-line JSON document.
func JSON(rd pipeline.Reading, volts float64) ([]byte, error) {
	data, err := json.Marshal(NewDocument(rd, volts))
	if err != nil {
		return nil, fmt.Errorf("failed to encode reading: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a document produced by JSON.
func DecodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to decode reading: %w", err)
	}
	return doc, nil
}
