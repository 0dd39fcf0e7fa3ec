package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/ampwatch/internal/pipeline"
)

// MessageSender delivers messages to a running program; *tea.Program satisfies it
type MessageSender interface {
	Send(msg tea.Msg)
}

// Feed forwards pipeline outcomes into the monitor
type Feed struct {
	program MessageSender
}

// NewFeed creates a feed that sends to program
func NewFeed(program MessageSender) *Feed {
	return &Feed{program: program}
}

// ObserveOutcome implements pipeline.Observer
func (f *Feed) ObserveOutcome(o pipeline.Outcome) {
	f.program.Send(OutcomeMsg{Outcome: o})
}
