package pipeline

import (
	"context"

	"github.com/muurk/ampwatch/internal/frame"
)

// Reading is a decoded record paired with the capture it came from.
type Reading struct {
	Date   string // capture date, verbatim from the first CSV field
	LineNo int    // 1-based input line, 0 when not read from a stream
	Record *frame.Record
}

// Valid reports whether the stored CRC matched exactly.
func (r Reading) Valid() bool {
	return r.Record != nil && r.Record.CRCResult == frame.Valid
}

// Sink consumes decoded readings. Every decoded reading is handed to every sink,
// whatever its CRC result; sinks apply their own acceptance rules.
type Sink interface {
	Handle(ctx context.Context, r Reading) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, r Reading) error

// Handle calls f.
func (f SinkFunc) Handle(ctx context.Context, r Reading) error {
	return f(ctx, r)
}

// Observer is told about every processed line, after the sinks have run.
type Observer interface {
	ObserveOutcome(o Outcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(o Outcome)

// ObserveOutcome calls f.
func (f ObserverFunc) ObserveOutcome(o Outcome) {
	f(o)
}

// Observers fans an outcome out to several observers in order.
type Observers []Observer

// ObserveOutcome notifies every non-nil observer.
func (m Observers) ObserveOutcome(o Outcome) {
	for _, obs := range m {
		if obs != nil {
			obs.ObserveOutcome(o)
		}
	}
}
