package cli

import "github.com/charmbracelet/lipgloss"

// Phosphor palette, shared by the CLI and the TUI
var (
	// Trace colours (dim to bright)
	PhosphorDim    = lipgloss.Color("#0B5D1E") // Decaying trace
	PhosphorGreen  = lipgloss.Color("#1DB954") // Steady trace
	PhosphorBright = lipgloss.Color("#7CFC9A") // Fresh trace

	// Bezel colours
	ScopeAmber = lipgloss.Color("#F8B31D") // Title overlay default
	GridGray   = lipgloss.Color("#6B7B6E") // Graticule grey for subtle text
)
