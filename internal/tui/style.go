package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle = lipgloss.NewStyle().Margin(1, 2)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 3).
			Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	daysStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5c542"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))

	// fadedStyle stands in for the hidden class while a panel fades.
	fadedStyle = lipgloss.NewStyle().Faint(true)

	toggleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
