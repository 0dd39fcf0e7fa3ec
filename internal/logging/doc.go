// Package logging provides structured logging for ampwatch.
//
// This package wraps a global zap logger with convenience functions. Logging is
// silent unless a level is requested, so the decoded readings on stdout stay clean
// when ampwatch is used in a shell pipeline.
//
// # Log Levels
//
//   - Debug: rejected frames, per-reading detail, CRC input dumps
//   - Info: startup, sink connections, end-of-run summaries
//   - Warn: sink failures that do not stop a run
//   - Error: failures that end a command
//
// # Configuration
//
// The level comes from, in order: the --log-level flag, the logging.level config key,
// then the AMPWATCH_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(logging.Options{Level: "debug"}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr in console format, or JSON with Format "json". When
// File.Filename is set, entries are also written to a rotating file managed by
// lumberjack.
//
// # Domain Helpers
//
//	logging.LogFrame(lineNo, raw, err)   // rejected capture
//	logging.LogReading(date, sender, totalAh, currentA, "Valid")
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has returned.
package logging
