package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Color palette
var (
	primaryColor   = PhosphorGreen
	accentColor    = ScopeAmber
	errorColor     = lipgloss.Color("#E0343C") // Red
	mutedColor     = lipgloss.Color("#888888") // Gray
	highlightColor = lipgloss.Color("#FFFF00") // Yellow
	textColor      = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	// Title style - bold phosphor green
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Subtitle style - muted gray
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// Section header style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PhosphorBright)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// Highlight style for important values
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	// Box style for framed content
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

const (
	appTitle   = "Oscigen ∿"
	appTagline = "Render audio tracks as stabilised oscilloscope waveforms into an MP4."
)

// PrintBanner prints the application banner
func PrintBanner() {
	fmt.Println(TitleStyle.Render(appTitle))
	fmt.Println(SubtitleStyle.Render(appTagline))
	fmt.Println()
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render(appTitle))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("%s %s\n", HighlightStyle.Render("Warning:"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints an informational message
func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println(HeaderStyle.Render(title))
}

// FormatDuration formats a duration nicely
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", d.Seconds()*1000)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatSpeed formats encoding speed
func FormatSpeed(speed float64) string {
	return fmt.Sprintf("%.1fx realtime", speed)
}

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// PrintBox prints content in a styled box
func PrintBox(content string) {
	fmt.Println(BoxStyle.Render(content))
}

// Summary is the end-of-run report shown by PrintSummary.
type Summary struct {
	Output    string
	Frames    int
	Encoder   string
	Duration  time.Duration // Video length
	Elapsed   time.Duration // Wall time
	FileSize  uint64
	PeakQueue int
	QueueCap  int
}

// PrintSummary prints the end-of-run report in a box.
func PrintSummary(s Summary) {
	var b strings.Builder

	b.WriteString(SuccessStyle.Render("✓ Encoding Complete!"))
	b.WriteString("\n\n")

	row := func(key, value string) {
		b.WriteString(KeyStyle.Render(fmt.Sprintf("%-11s", key)))
		b.WriteString(ValueStyle.Render(value))
		b.WriteString("\n")
	}

	row("Output:", s.Output)
	if s.Encoder != "" {
		row("Encoder:", s.Encoder)
	}
	row("Frames:", fmt.Sprintf("%d", s.Frames))
	row("Duration:", fmt.Sprintf("%.1fs video in %s", s.Duration.Seconds(), FormatDuration(s.Elapsed)))
	if s.Elapsed > 0 {
		row("Speed:", FormatSpeed(s.Duration.Seconds()/s.Elapsed.Seconds()))
	}
	row("File Size:", FormatBytes(s.FileSize))
	b.WriteString(KeyStyle.Render(fmt.Sprintf("%-11s", "Queue:")))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("peak %d of %d frames", s.PeakQueue, s.QueueCap)))

	PrintBox(b.String())
}
