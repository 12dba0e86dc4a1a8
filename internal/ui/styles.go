// Package ui is the interactive terminal front end: the three step tracking
// wizard and the mood trend chart.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Primary     = lipgloss.Color("#0891b2")
	Accent      = lipgloss.Color("#06b6d4")
	Muted       = lipgloss.Color("#64748b")
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
)

// Styles groups the lipgloss styles used by the wizard and chart.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Success  lipgloss.Style
	Bar      lipgloss.Style
	Alert    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(Primary),
		Header:   lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(Muted),
		Cursor:   lipgloss.NewStyle().Foreground(Accent).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(Success),
		Success:  lipgloss.NewStyle().Foreground(Success).Bold(true),
		Bar:      lipgloss.NewStyle().Foreground(Accent),
		Alert: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Destructive).
			Padding(1, 2),
	}
}
