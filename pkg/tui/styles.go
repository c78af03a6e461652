package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
// Single source of truth for browse UI colors.
var (
	honeyYellow = lipgloss.Color("#FFE066") // matches the default wrapper color - primary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // soft mint green - success states
	mutedGray   = lipgloss.Color("#6B7280") // muted gray - secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // bright white - primary text
	softRed     = lipgloss.Color("#FFB3BA") // soft red - errors
)

// Common styles for the browse UI.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(honeyYellow).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(softRed).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	quoteStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Italic(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(honeyYellow).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)
)
