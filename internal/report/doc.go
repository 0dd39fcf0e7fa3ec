// Package report renders decoded readings for people and programs.
//
// Three formats are available:
//   - text: the one-line receiver log format, prefixed with the capture date
//   - detailed: a multi-line block per reading, used by `ampwatch frame`
//   - json: one flat Document per line
//
// Printer is the stdout sink of the decode pipeline. It holds the last printed
// line so consecutive duplicates are dropped, and colours the CRC result when
// writing to a terminal.
package report
