package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/pipeline"
)

// Output formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatDetailed = "detailed"
)

// PrinterOptions configures a Printer
type PrinterOptions struct {
	Format    string  // text (default), json or detailed
	ValidOnly bool    // print only readings whose CRC matched exactly
	Volts     float64 // line voltage for kWh and kW; frame.LineVoltage when zero
	Color     bool    // colour the CRC result
}

// Printer is a pipeline sink that writes readings to an output stream.
//
// Readings with an Invalid CRC are never printed, and with ValidOnly neither are
// shifted ones. A reading that renders identically to the previously printed one
// is dropped; the receiver repeats frames and the repeats carry no new data.
type Printer struct {
	out  io.Writer
	opts PrinterOptions

	renderer *lipgloss.Renderer
	styles   map[frame.CRCResult]lipgloss.Style

	mu   sync.Mutex
	last string
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, opts PrinterOptions) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	opts.Format = strings.ToLower(opts.Format)
	if opts.Volts == 0 {
		opts.Volts = frame.LineVoltage
	}

	p := &Printer{out: w, opts: opts}
	if opts.Color {
		p.renderer = lipgloss.NewRenderer(w)
		p.renderer.SetColorProfile(termenv.ANSI256)
		p.styles = map[frame.CRCResult]lipgloss.Style{
			frame.Valid:        p.renderer.NewStyle().Foreground(lipgloss.Color("#43BF6D")).Bold(true),
			frame.ShiftedLeft:  p.renderer.NewStyle().Foreground(lipgloss.Color("#FFA500")),
			frame.ShiftedRight: p.renderer.NewStyle().Foreground(lipgloss.Color("#FFA500")),
		}
	}
	return p
}

// ColorEnabled resolves a colour mode (auto, always, never) for w.
// In auto mode colour is used only when w is a terminal.
func ColorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Accepts reports whether a reading passes the printer's CRC filter.
func (p *Printer) Accepts(rd pipeline.Reading) bool {
	if rd.Record == nil {
		return false
	}
	switch rd.Record.CRCResult {
	case frame.Valid:
		return true
	case frame.ShiftedLeft, frame.ShiftedRight:
		return !p.opts.ValidOnly
	default:
		return false
	}
}

// Handle prints the reading unless it is filtered out or repeats the last output.
func (p *Printer) Handle(_ context.Context, rd pipeline.Reading) error {
	if !p.Accepts(rd) {
		return nil
	}

	plain, colored, err := p.render(rd)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if plain == p.last {
		return nil
	}
	p.last = plain

	if _, err := fmt.Fprintln(p.out, colored); err != nil {
		return fmt.Errorf("failed to write reading: %w", err)
	}
	return nil
}

// Last returns the most recently printed line, without colour.
func (p *Printer) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *Printer) render(rd pipeline.Reading) (plain, colored string, err error) {
	r := rd.Record

	switch p.opts.Format {
	case FormatJSON:
		data, err := JSON(rd, p.opts.Volts)
		if err != nil {
			return "", "", err
		}
		return string(data), string(data), nil

	case FormatDetailed:
		block := fmt.Sprintf("%s:\n%s", rd.Date, Detailed(r, p.opts.Volts))
		return block, block, nil

	default:
		body := fmt.Sprintf("%s: %s", rd.Date, textBody(r, p.opts.Volts))
		result := r.CRCResult.String()
		plain = body + result
		colored = plain
		if style, ok := p.styles[r.CRCResult]; ok {
			colored = body + style.Render(result)
		}
		return plain, colored, nil
	}
}
