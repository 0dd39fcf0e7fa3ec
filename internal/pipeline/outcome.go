package pipeline

import (
	"github.com/muurk/ampwatch/internal/capture"
	"github.com/muurk/ampwatch/internal/frame"
)

// OutcomeKind classifies what happened to one input line.
type OutcomeKind int

const (
	// OutcomeSkipped means the line had no frame field or an implausible length
	OutcomeSkipped OutcomeKind = iota
	// OutcomeFailed means the frame did not decode
	OutcomeFailed
	// OutcomeDecoded means a Reading was produced and passed to the sinks
	OutcomeDecoded
)

// String returns a lower-case name for the kind
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeDecoded:
		return "decoded"
	default:
		return "unknown"
	}
}

// Skip reasons
const (
	SkipNoFrame     = "no_frame"
	SkipImplausible = "implausible_length"
)

// Outcome describes the processing of one line.
type Outcome struct {
	Kind       OutcomeKind
	LineNo     int
	Line       *capture.Line // nil when the line had no frame field
	SkipReason string        // set for OutcomeSkipped
	Err        error         // decode error for OutcomeFailed
	Reading    *Reading      // set for OutcomeDecoded
	SinkErrors []error       // sink failures for OutcomeDecoded
}

// FailureType returns the decode error type, or 0 when the line did not fail.
func (o Outcome) FailureType() frame.ErrorType {
	if o.Kind != OutcomeFailed {
		return 0
	}
	return frame.TypeOf(o.Err)
}

// CRCResult returns the CRC result of a decoded line, or frame.Invalid otherwise.
func (o Outcome) CRCResult() frame.CRCResult {
	if o.Kind != OutcomeDecoded || o.Reading == nil || o.Reading.Record == nil {
		return frame.Invalid
	}
	return o.Reading.Record.CRCResult
}
