package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/pipeline"
)

// DefaultMaxRows bounds the recent frames table
const DefaultMaxRows = 200

// OutcomeMsg carries one processed capture line into the monitor
type OutcomeMsg struct {
	Outcome pipeline.Outcome
}

// DoneMsg reports that the input is exhausted
type DoneMsg struct {
	Err error
}

// MonitorOptions configures the monitor display
type MonitorOptions struct {
	Command string                       // shown under the title
	Source  string                       // capture source, e.g. "stdin"
	Volts   float64                      // line voltage for kWh and W
	Names   func(senderID string) string // sender display names; nil shows ids
	MaxRows int                          // 0 means DefaultMaxRows
}

// SenderState is the latest plausible reading of one sender
type SenderState struct {
	Name   string
	Date   string
	Record *frame.Record
	Frames int
}

// monitorKeyMap defines key bindings for the monitor
type monitorKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Clear key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Clear, k.Help, k.Quit},
	}
}

// MonitorModel is the live reading monitor
type MonitorModel struct {
	opts MonitorOptions

	stats   pipeline.Stats
	senders map[string]*SenderState
	order   []string
	rows    []table.Row

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    monitorKeyMap

	Width  int
	Height int

	done bool
	err  error
}

var monitorColumns = []table.Column{
	{Title: "Date", Width: 26},
	{Title: "Sender", Width: 14},
	{Title: "Total Ah", Width: 10},
	{Title: "Current A", Width: 9},
	{Title: "Power", Width: 8},
	{Title: "Bat", Width: 3},
	{Title: "CRC", Width: 15},
}

// NewMonitorModel creates a monitor with no readings
func NewMonitorModel(opts MonitorOptions) MonitorModel {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}

	t := table.New(
		table.WithColumns(monitorColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(MutedColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(TextColor).
		Background(PrimaryColor)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	width, height := GetTerminalSize()

	return MonitorModel{
		opts:    opts,
		senders: make(map[string]*SenderState),
		table:   t,
		spinner: sp,
		help:    help.New(),
		keys: monitorKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "down"),
			),
			Clear: key.NewBinding(
				key.WithKeys("c"),
				key.WithHelp("c", "clear"),
			),
			Help: key.NewBinding(
				key.WithKeys("?"),
				key.WithHelp("?", "help"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		Width:  width,
		Height: height,
	}
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = clampWidth(msg.Width)
		m.Height = msg.Height
		m.help.Width = m.Width
		m.table.SetHeight(m.tableHeight())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.rows = nil
			m.table.SetRows(nil)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case OutcomeMsg:
		m.observe(msg.Outcome)
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *MonitorModel) observe(o pipeline.Outcome) {
	m.stats.Add(o)

	if o.Kind != pipeline.OutcomeDecoded || o.Reading == nil || o.Reading.Record == nil {
		return
	}
	rd := o.Reading
	rec := rd.Record
	name := m.senderName(rec.SenderID)

	row := table.Row{
		rd.Date,
		name,
		fmt.Sprintf("%.2f", rec.TotalAh),
		fmt.Sprintf("%.2f", rec.CurrentA),
		fmt.Sprintf("%.0f W", rec.CurrentKW(m.opts.Volts)*1000),
		rec.Battery,
		CRCMarker(rec.CRCResult) + " " + rec.CRCResult.String(),
	}
	m.rows = append([]table.Row{row}, m.rows...)
	if len(m.rows) > m.opts.MaxRows {
		m.rows = m.rows[:m.opts.MaxRows]
	}
	m.table.SetRows(m.rows)

	if !rec.CRCResult.Plausible() {
		return
	}
	st, ok := m.senders[rec.SenderID]
	if !ok {
		st = &SenderState{}
		m.senders[rec.SenderID] = st
		m.order = append(m.order, rec.SenderID)
	}
	st.Name = name
	st.Date = rd.Date
	st.Record = rec
	st.Frames++
}

func (m MonitorModel) senderName(id string) string {
	if m.opts.Names == nil {
		return id
	}
	return m.opts.Names(id)
}

// tableHeight leaves room for the header, counters, sender list and help
func (m MonitorModel) tableHeight() int {
	h := m.Height - 14 - len(m.order)
	if h < 3 {
		return 3
	}
	return h
}

// Stats returns the counts of everything observed so far
func (m MonitorModel) Stats() pipeline.Stats {
	return m.stats
}

// Sender returns the latest plausible reading of a sender
func (m MonitorModel) Sender(id string) (*SenderState, bool) {
	st, ok := m.senders[id]
	return st, ok
}

// Rows returns the recent frames table, newest first
func (m MonitorModel) Rows() []table.Row {
	return m.rows
}

// Done reports whether the input is exhausted, and the error it ended with
func (m MonitorModel) Done() (bool, error) {
	return m.done, m.err
}

// View implements tea.Model
func (m MonitorModel) View() string {
	var b strings.Builder

	params := []Param{{Key: "Source", Value: m.opts.Source}}
	if m.opts.Volts > 0 {
		params = append(params, Param{Key: "Voltage", Value: fmt.Sprintf("%.0f V", m.opts.Volts)})
	}
	b.WriteString(NewHeader("ampwatch monitor", m.opts.Command, params...).SetWidth(m.Width).Render())
	b.WriteString("\n")

	b.WriteString(m.renderCounters())
	b.WriteString("\n\n")

	b.WriteString(SectionTitleStyle.Render("Senders"))
	b.WriteString("\n")
	if len(m.order) == 0 {
		b.WriteString(StatusStyle.Render("none yet"))
		b.WriteString("\n")
	}
	for _, id := range m.order {
		b.WriteString(m.renderSender(m.senders[id]))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(SectionTitleStyle.Render("Recent frames"))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString("  " + m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}

func (m MonitorModel) renderCounters() string {
	counter := func(label string, n int) string {
		return CounterKeyStyle.Render(label+" ") + CounterValueStyle.Render(humanize.Comma(int64(n)))
	}
	parts := []string{
		counter("Lines", m.stats.Lines),
		counter("Valid", m.stats.Valid),
		counter("Shifted", m.stats.ShiftedLeft+m.stats.ShiftedRight),
		counter("Invalid", m.stats.Invalid),
		counter("Failed", m.stats.Failed()),
		counter("Skipped", m.stats.Skipped()),
	}
	return "  " + strings.Join(parts, "   ")
}

func (m MonitorModel) renderSender(st *SenderState) string {
	rec := st.Record
	line := fmt.Sprintf("%8.3f kWh  %6.0f W  bat %s  %s  (%s frames)",
		rec.TotalKWh(m.opts.Volts),
		rec.CurrentKW(m.opts.Volts)*1000,
		rec.Battery,
		st.Date,
		humanize.Comma(int64(st.Frames)),
	)
	return SenderNameStyle.Render(st.Name) + CRCStyle(rec.CRCResult).Render(CRCMarker(rec.CRCResult)) + " " + line
}

func (m MonitorModel) renderStatus() string {
	switch {
	case m.err != nil:
		return "  " + ErrorMessageStyle.Render(FailureMarker+" "+m.err.Error())
	case m.done:
		return StatusStyle.Render("input finished, press q to quit")
	default:
		return "  " + m.spinner.View() + StatusStyle.Render("waiting for frames")
	}
}
