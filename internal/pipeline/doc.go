// Package pipeline runs capture lines through the frame decoder and fans the
// resulting readings out to sinks.
//
// Each line ends in exactly one Outcome:
//   - skipped: no "{len}nibbles," field, or a length outside the plausible range
//   - failed: the frame did not resynchronize or decode (see frame.ErrorType)
//   - decoded: a Reading was produced and handed to every Sink
//
// Sinks decide for themselves which CRC results they accept. A failing sink is
// logged and counted; it never stops the run.
//
//	p := &pipeline.Processor{
//	    Sinks:    []pipeline.Sink{printer, store},
//	    Observer: metrics,
//	}
//	stats, err := p.Run(ctx, os.Stdin)
//	fmt.Fprintln(os.Stderr, stats.Summary())
package pipeline
