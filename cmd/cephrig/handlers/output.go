package handlers

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/imamik/cephrig/internal/health"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorYellow = lipgloss.Color("#eab308")
	colorRed    = lipgloss.Color("#ef4444")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	labelStyle = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle = lipgloss.NewStyle().Foreground(colorBlue)
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

// isTerminal reports whether output is styled. Replaced in tests.
var isTerminal = isInteractiveTTY

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// printer renders key/value summaries, styled on a terminal.
type printer struct {
	styled bool
	b      strings.Builder
}

func newPrinter() *printer {
	return &printer{styled: isTerminal()}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) title(s string) {
	p.b.WriteString(p.render(titleStyle, s))
	p.b.WriteString("\n")
}

func (p *printer) row(label, value string) {
	p.rowStyled(label, value, valueStyle)
}

func (p *printer) rowStyled(label, value string, style lipgloss.Style) {
	fmt.Fprintf(&p.b, "  %s %s\n", p.render(labelStyle, fmt.Sprintf("%-10s", label+":")), p.render(style, value))
}

func (p *printer) flush() {
	fmt.Fprint(stdout, p.b.String())
	p.b.Reset()
}

// statusStyle colors a health status.
func statusStyle(s health.Status) lipgloss.Style {
	switch s {
	case health.StatusOK:
		return okStyle
	case health.StatusWarn:
		return warnStyle
	default:
		return failStyle
	}
}

// resultStyle colors a run result.
func resultStyle(err error) (string, lipgloss.Style) {
	if err != nil {
		return "failed", failStyle
	}
	return "succeeded", okStyle
}
