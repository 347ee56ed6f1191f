package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
)

// HeaderStyle is used for the board title and calendar month header.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// SelectedRowStyle highlights the focused payout row.
var SelectedRowStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)

// MutedStyle is used for secondary text and days outside the shown month.
var MutedStyle = lipgloss.NewStyle().Foreground(ColorGray)

// PaidStyle and UnpaidStyle color the payout status column.
var (
	PaidStyle   = lipgloss.NewStyle().Foreground(ColorGreen)
	UnpaidStyle = lipgloss.NewStyle().Foreground(ColorYellow)
)

// CurrentWindowStyle marks days of the current pay window.
var CurrentWindowStyle = lipgloss.NewStyle().
	Background(ColorSubtle)

// MarkerStyle marks calendar days that have entries.
var MarkerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// ErrorStyle renders error lines.
var ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)

// HelpStyle is used for keyboard shortcut hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)
