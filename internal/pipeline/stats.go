package pipeline

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/muurk/ampwatch/internal/frame"
)

// Stats counts outcomes over a run.
type Stats struct {
	Lines int

	NoFrame     int
	Implausible int

	ResyncFailed int
	TooShort     int
	BadHex       int

	Valid        int
	ShiftedLeft  int
	ShiftedRight int
	Invalid      int

	SinkErrors int
}

// Add counts one outcome.
func (s *Stats) Add(o Outcome) {
	s.Lines++

	switch o.Kind {
	case OutcomeSkipped:
		if o.SkipReason == SkipImplausible {
			s.Implausible++
		} else {
			s.NoFrame++
		}

	case OutcomeFailed:
		switch o.FailureType() {
		case frame.ErrTypeResyncFailed:
			s.ResyncFailed++
		case frame.ErrTypeTooShort:
			s.TooShort++
		case frame.ErrTypeBadHex:
			s.BadHex++
		}

	case OutcomeDecoded:
		switch o.CRCResult() {
		case frame.Valid:
			s.Valid++
		case frame.ShiftedLeft:
			s.ShiftedLeft++
		case frame.ShiftedRight:
			s.ShiftedRight++
		default:
			s.Invalid++
		}
		s.SinkErrors += len(o.SinkErrors)
	}
}

// Merge adds the counters of another run, e.g. the next input file.
func (s *Stats) Merge(o Stats) {
	s.Lines += o.Lines
	s.NoFrame += o.NoFrame
	s.Implausible += o.Implausible
	s.ResyncFailed += o.ResyncFailed
	s.TooShort += o.TooShort
	s.BadHex += o.BadHex
	s.Valid += o.Valid
	s.ShiftedLeft += o.ShiftedLeft
	s.ShiftedRight += o.ShiftedRight
	s.Invalid += o.Invalid
	s.SinkErrors += o.SinkErrors
}

// Skipped returns lines without a usable frame field.
func (s Stats) Skipped() int { return s.NoFrame + s.Implausible }

// Failed returns lines whose frame did not decode.
func (s Stats) Failed() int { return s.ResyncFailed + s.TooShort + s.BadHex }

// Decoded returns lines that produced a reading.
func (s Stats) Decoded() int { return s.Valid + s.ShiftedLeft + s.ShiftedRight + s.Invalid }

// Summary renders the counters on one line.
func (s Stats) Summary() string {
	c := func(n int) string { return humanize.Comma(int64(n)) }

	out := fmt.Sprintf("%s lines: %s decoded (%s valid, %s shifted, %s invalid), %s failed (%s resync, %s short, %s hex), %s skipped",
		c(s.Lines),
		c(s.Decoded()), c(s.Valid), c(s.ShiftedLeft+s.ShiftedRight), c(s.Invalid),
		c(s.Failed()), c(s.ResyncFailed), c(s.TooShort), c(s.BadHex),
		c(s.Skipped()),
	)
	if s.SinkErrors > 0 {
		out += fmt.Sprintf(", %s sink errors", c(s.SinkErrors))
	}
	return out
}
