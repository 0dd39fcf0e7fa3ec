package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/muurk/ampwatch/internal/pipeline"
)

// RenderSummary renders the counts of a finished run as a result box.
// The box is green when every decoded frame was valid and nothing failed.
func RenderSummary(stats pipeline.Stats, width int) string {
	width = clampWidth(width)

	clean := stats.Failed() == 0 && stats.Invalid == 0 && stats.SinkErrors == 0
	title := SuccessTitleStyle.Render(SuccessMarker + " " + humanize.Comma(int64(stats.Decoded())) + " frames decoded")
	border := SuccessColor
	if !clean {
		title = WarningTitleStyle.Render(WarningMarker + " " + humanize.Comma(int64(stats.Decoded())) + " frames decoded with problems")
		border = WarningColor
	}

	details := []Param{
		{"Lines", humanize.Comma(int64(stats.Lines))},
		{"Valid", humanize.Comma(int64(stats.Valid))},
		{"Shifted", fmt.Sprintf("%s left, %s right", humanize.Comma(int64(stats.ShiftedLeft)), humanize.Comma(int64(stats.ShiftedRight)))},
		{"Invalid", humanize.Comma(int64(stats.Invalid))},
		{"Failed", fmt.Sprintf("%s resync, %s short, %s hex", humanize.Comma(int64(stats.ResyncFailed)), humanize.Comma(int64(stats.TooShort)), humanize.Comma(int64(stats.BadHex)))},
		{"Skipped", humanize.Comma(int64(stats.Skipped()))},
	}
	if stats.SinkErrors > 0 {
		details = append(details, Param{"Sink errors", humanize.Comma(int64(stats.SinkErrors))})
	}

	lines := []string{title, ""}
	for _, d := range details {
		lines = append(lines, ResultKeyStyle.Render(d.Key)+ResultValueStyle.Render(d.Value))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Width(width-2).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
}
