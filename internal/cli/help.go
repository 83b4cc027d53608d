package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Help styles, phosphor theme
var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PhosphorBright)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(GridGray).
			Italic(true)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ScopeAmber)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(PhosphorGreen).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(GridGray).
				Italic(true)
)

// helpExamples are shown at the foot of the help screen.
var helpExamples = [][2]string{
	{"oscigen -i mix.wav", "one waveform of the mix"},
	{"oscigen -i mix.wav kick.wav bass.wav -o out.mp4", "mix as soundtrack, two scopes"},
	{"oscigen -i mix.flac --snapshot frame.png --at 30", "check the layout at 0:30"},
}

// helpRow is one line of the flags table.
type helpRow struct {
	left  string
	help  string
	deflt string
}

// StyledHelpPrinter creates a kong help printer rendered with lipgloss.
func StyledHelpPrinter(_ kong.HelpOptions) kong.HelpPrinter {
	return func(_ kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render(appTitle))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(appTagline))
		sb.WriteString("\n\n")

		section(&sb, "Usage:")
		fmt.Fprintf(&sb, "  %s -i <master> [<track>...] [-o <output>] [flags]\n", ctx.Model.Name)

		rows := flagRows(ctx.Model.Node)
		if len(rows) > 0 {
			sb.WriteString("\n")
			section(&sb, "Flags:")
			writeRows(&sb, rows)
		}

		sb.WriteString("\n")
		section(&sb, "Examples:")
		width := 0
		for _, ex := range helpExamples {
			width = max(width, len(ex[0]))
		}
		for _, ex := range helpExamples {
			fmt.Fprintf(&sb, "  %-*s  %s\n", width, ex[0], helpDefaultStyle.Render(ex[1]))
		}

		sb.WriteString("\n")
		_, err := fmt.Fprint(ctx.Stdout, sb.String())
		return err
	}
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(helpSectionStyle.Render(title))
	sb.WriteString("\n")
}

// writeRows pads the flag column so help text lines up. Padding is computed
// on the unstyled text; ANSI sequences have no width.
func writeRows(sb *strings.Builder, rows []helpRow) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r.left))
	}

	for _, r := range rows {
		sb.WriteString("  ")
		sb.WriteString(helpFlagStyle.Render(r.left))
		sb.WriteString(strings.Repeat(" ", width-len(r.left)+2))
		sb.WriteString(r.help)
		if r.deflt != "" {
			sb.WriteString(" ")
			sb.WriteString(helpDefaultStyle.Render("(default: " + r.deflt + ")"))
		}
		sb.WriteString("\n")
	}
}

func flagRows(node *kong.Node) []helpRow {
	var rows []helpRow

	for _, f := range node.Flags {
		if f.Hidden {
			continue
		}

		left := "    --" + f.Name
		if f.Short != 0 {
			left = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		}
		if !f.IsBool() {
			placeholder := f.PlaceHolder
			if placeholder == "" {
				placeholder = f.Name
			}
			left += "=" + strings.ToUpper(placeholder)
		}
		if f.IsSlice() {
			left += ",..."
		}

		row := helpRow{left: left, help: f.Help}
		// Zero values say nothing; skip them
		if f.HasDefault && !f.IsBool() && f.Default != "" && f.Default != "0" {
			row.deflt = f.Default
		}
		rows = append(rows, row)
	}

	return rows
}
