package screen

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	name      lipgloss.Style
	focused   lipgloss.Style
	detail    lipgloss.Style
	meta      lipgloss.Style
	confirmed lipgloss.Style
	pending   lipgloss.Style
	admin     lipgloss.Style
	warning   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		name:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		focused:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("221")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		confirmed: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("78")),
		pending:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		admin:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		warning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
	}
}
