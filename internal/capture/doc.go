// Package capture reads receiver capture lines.
//
// A capture line is CSV produced by the radio receiver. The first field is the
// capture date and one of the later fields carries the demodulated frame as
// "{len}nibbles", where len is the capture length reported by the receiver:
//
//	2024-01-05 10:00:00,...,{204}beef55553475...,...
//
// Only the first such field is used. Lines without one yield ErrNoFrame and are
// skipped by the pipeline, as are lines whose length falls outside the plausible
// range (191..219 by default).
package capture
