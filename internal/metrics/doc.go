// Package metrics exposes decoder counters and the latest readings to Prometheus.
//
// DecoderMetrics observes the pipeline and maintains:
//
//	ampwatch_lines_total                     capture lines read
//	ampwatch_lines_skipped_total{reason}     no_frame, implausible_length
//	ampwatch_frames_total{crc_result}        valid, shifted_left, shifted_right, invalid
//	ampwatch_decode_failures_total{reason}   resync_failed, too_short, bad_hex
//	ampwatch_sink_errors_total
//	ampwatch_total_ah{sender}                last valid cumulative charge
//	ampwatch_current_a{sender}               last valid current
//	ampwatch_last_valid_timestamp_seconds
//
// The registry is served by the HTTP server on /metrics.
package metrics
