package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	renderer *lipgloss.Renderer
	prompt   lipgloss.Style
	err      lipgloss.Style
	ok       lipgloss.Style
	warn     lipgloss.Style
	blue     lipgloss.Color
	green    lipgloss.Color
	yellow   lipgloss.Color
}

// newStyles binds styles to out so color is dropped when out is not a terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		renderer: r,
		prompt:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		err:      r.NewStyle().Foreground(lipgloss.Color("9")),
		ok:       r.NewStyle().Foreground(lipgloss.Color("10")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("11")),
		blue:     lipgloss.Color("12"),
		green:    lipgloss.Color("10"),
		yellow:   lipgloss.Color("11"),
	}
}

// panel renders body in a rounded box with title on the first line.
func (s styles) panel(title, body string, border lipgloss.Color) string {
	heading := s.renderer.NewStyle().Bold(true).Foreground(border).Render(title)
	return s.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(heading + "\n\n" + body)
}
