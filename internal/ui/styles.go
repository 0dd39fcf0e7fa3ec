package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/muurk/ampwatch/internal/frame"
)

// Color palette for the monitor
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - valid checksums
	ErrorColor   = lipgloss.Color("#FF5555") // Red - invalid checksums, failures
	WarningColor = lipgloss.Color("#FFA500") // Orange - shifted checksums
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 120
	DefaultHeight    = 24
)

// Shared styles
var (
	// HeaderTitleStyle is for the banner title (e.g., "AMPWATCH MONITOR")
	HeaderTitleStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true).
				PaddingLeft(2)

	// HeaderCommandStyle is for the command line under the title
	HeaderCommandStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamKeyStyle is for parameter keys (e.g., "Source:")
	HeaderParamKeyStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				PaddingLeft(2)

	// HeaderParamValueStyle is for parameter values
	HeaderParamValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// SectionTitleStyle is for "Senders" and "Recent frames"
	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true).
				PaddingLeft(2)

	// CounterKeyStyle is for counter labels
	CounterKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// CounterValueStyle is for counter values
	CounterValueStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true)

	// SenderNameStyle is for sender names in the latest-reading list
	SenderNameStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Width(16).
			PaddingLeft(2)

	// ResultKeyStyle is for summary keys
	ResultKeyStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(15)

	// ResultValueStyle is for summary values
	ResultValueStyle = lipgloss.NewStyle().
				Foreground(TextColor)

	// SuccessTitleStyle is for a clean run summary title
	SuccessTitleStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// WarningTitleStyle is for a summary with failures
	WarningTitleStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true)

	// ErrorMessageStyle is for error text
	ErrorMessageStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// StatusStyle is for the status line under the table
	StatusStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			PaddingLeft(2)
)

// Markers
const (
	SuccessMarker = "✓"
	WarningMarker = "!"
	FailureMarker = "✗"
)

// CRCStyle returns the style for a checksum classification
func CRCStyle(r frame.CRCResult) lipgloss.Style {
	switch r {
	case frame.Valid:
		return lipgloss.NewStyle().Foreground(SuccessColor)
	case frame.ShiftedLeft, frame.ShiftedRight:
		return lipgloss.NewStyle().Foreground(WarningColor)
	default:
		return lipgloss.NewStyle().Foreground(ErrorColor)
	}
}

// CRCMarker returns the marker for a checksum classification
func CRCMarker(r frame.CRCResult) string {
	switch r {
	case frame.Valid:
		return SuccessMarker
	case frame.ShiftedLeft, frame.ShiftedRight:
		return WarningMarker
	default:
		return FailureMarker
	}
}

// GetTerminalSize returns the current terminal width and height
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, DefaultHeight
	}
	return clampWidth(width), height
}

func clampWidth(width int) int {
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}
