// Package ui renders the live reading monitor and run summaries.
//
// The monitor is a Bubble Tea program fed by the pipeline: a Feed observer turns
// every Outcome into an OutcomeMsg, and MonitorModel keeps the counters, the
// latest plausible reading of each sender and a table of recent frames.
//
//	stats, err := ui.RunMonitor(ctx, proc, os.Stdin, ui.MonitorOptions{
//	    Command: "ampwatch monitor",
//	    Source:  "stdin",
//	    Volts:   cfg.LineVoltage,
//	    Names:   cfg.SenderName,
//	}, tea.WithInputTTY())
//
// RenderSummary draws the result box printed after a run.
//
// # Logging Integration
//
// zap logging is silent unless AMPWATCH_LOG_LEVEL is set, so log lines do not
// tear the full screen view. Use --log-file to capture logs while monitoring.
package ui
