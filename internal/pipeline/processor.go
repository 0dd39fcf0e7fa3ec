package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/muurk/ampwatch/internal/capture"
	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/logging"
)

// Processor turns capture lines into readings and hands them to its sinks.
//
// A zero MinLength and MaxLength select the default plausible range 191..219.
// A Processor is not safe for concurrent use; Run processes lines in order.
type Processor struct {
	Sinks     []Sink
	Observer  Observer
	MinLength int
	MaxLength int
}

func (p *Processor) bounds() (int, int) {
	if p.MinLength == 0 && p.MaxLength == 0 {
		return capture.DefaultMinLength, capture.DefaultMaxLength
	}
	return p.MinLength, p.MaxLength
}

// Process handles a single capture line.
func (p *Processor) Process(ctx context.Context, line string) Outcome {
	return p.process(ctx, 0, line)
}

func (p *Processor) process(ctx context.Context, lineNo int, line string) Outcome {
	out := Outcome{LineNo: lineNo}

	parsed, err := capture.ParseLine(line)
	if err != nil {
		out.Kind = OutcomeSkipped
		out.SkipReason = SkipNoFrame
		p.observe(out)
		return out
	}
	out.Line = parsed

	lo, hi := p.bounds()
	if !parsed.Plausible(lo, hi) {
		out.Kind = OutcomeSkipped
		out.SkipReason = SkipImplausible
		p.observe(out)
		return out
	}

	rec, err := frame.Parse(parsed.Nibbles)
	if err != nil {
		out.Kind = OutcomeFailed
		out.Err = err
		logging.LogFrame(lineNo, parsed.Nibbles, err)
		p.observe(out)
		return out
	}

	reading := Reading{Date: parsed.Date, LineNo: lineNo, Record: rec}
	out.Kind = OutcomeDecoded
	out.Reading = &reading
	logging.LogReading(reading.Date, rec.SenderID, rec.TotalAh, rec.CurrentA, rec.CRCResult.String())

	for _, sink := range p.Sinks {
		if err := sink.Handle(ctx, reading); err != nil {
			out.SinkErrors = append(out.SinkErrors, err)
			logging.Warn("Sink failed",
				zap.Int("line", lineNo),
				zap.String("sink", fmt.Sprintf("%T", sink)),
				zap.Error(err),
			)
		}
	}

	p.observe(out)
	return out
}

func (p *Processor) observe(o Outcome) {
	if p.Observer != nil {
		p.Observer.ObserveOutcome(o)
	}
}

// Run processes every non-empty line of r until end of input or until ctx is done.
// Decode failures and sink errors are counted, not returned. The returned error is
// ctx.Err() on cancellation or a read error from r.
func (p *Processor) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	sc := capture.NewScanner(r)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Add(p.process(ctx, sc.LineNo(), sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reading captures: %w", err)
	}

	logging.Info("Capture stream finished", zap.String("summary", stats.Summary()))
	return stats, ctx.Err()
}
