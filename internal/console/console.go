package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

var (
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("32"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("31"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

type Printer struct {
	stream io.Writer
	indent string
}

// NewPrinter creates a new Printer instance with the specified output stream. When color is
// false all styling is rendered as plain ASCII.
func NewPrinter(stream io.Writer, color bool) *Printer {
	if color {
		lipgloss.SetColorProfile(termenv.ANSI256)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	return &Printer{
		stream: stream,
		indent: "  ",
	}
}

func (p *Printer) Info(emoji string, format string, a ...any) (n int, err error) {
	prefix := p.indent + withEmoji(emoji)
	return fmt.Fprintf(p.stream, prefix+format+"\n", a...)
}

func (p *Printer) Success(emoji string, format string, a ...any) (n int, err error) {
	prefix := p.indent + withEmoji(emoji)
	return fmt.Fprintln(p.stream, successStyle.Render(fmt.Sprintf(prefix+format, a...)))
}

func (p *Printer) Warn(emoji string, format string, a ...any) (n int, err error) {
	prefix := p.indent + withEmoji(emoji)
	return fmt.Fprintln(p.stream, warnStyle.Render(fmt.Sprintf(prefix+format, a...)))
}

func (p *Printer) Error(emoji string, format string, a ...any) (n int, err error) {
	prefix := p.indent + withEmoji(emoji)
	return fmt.Fprintln(p.stream, errorStyle.Render(fmt.Sprintf(prefix+format, a...)))
}

// Table writes rows as a bordered table. headers may be nil.
func (p *Printer) Table(headers []string, rows [][]string) (n int, err error) {
	return fmt.Fprintln(p.stream, RenderTable(headers, rows))
}

// RenderTable renders rows with the printer's border style without writing them anywhere.
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Rows(rows...)

	if len(headers) > 0 {
		t = t.Headers(headers...)
	}

	return t.Render()
}

func withEmoji(emoji string) string {
	if emoji == "" {
		return ""
	}
	return emoji + " "
}
