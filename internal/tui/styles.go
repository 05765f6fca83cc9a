package tui

import "github.com/charmbracelet/lipgloss"

// styles contains the chrome styles of the TUI. Graph element colors come
// from the shapes themselves.
var styles = struct {
	// Header styles
	Focus lipgloss.Style
	Info  lipgloss.Style

	// Energy states
	EnergyActive  lipgloss.Style
	EnergyCooling lipgloss.Style
	EnergyIdle    lipgloss.Style
	Pinned        lipgloss.Style

	// Status row
	Loading lipgloss.Style
	Error   lipgloss.Style
	Preview lipgloss.Style
	Muted   lipgloss.Style

	Footer lipgloss.Style
}{
	Focus: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7c8594")),

	Info: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	EnergyActive: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),

	EnergyCooling: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	EnergyIdle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Pinned: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f3ee5d")),

	Loading: lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Preview: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3aecb")),

	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),
}
