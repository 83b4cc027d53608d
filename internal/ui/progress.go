package ui

import (
	"fmt"
	"image"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/linuxmatters/oscigen/internal/cli"
	"github.com/linuxmatters/oscigen/internal/pipeline"
)

// StartedMsg carries the run summary once the output is open.
type StartedMsg pipeline.Summary

// ProgressMsg carries per-frame progress.
type ProgressMsg pipeline.Progress

// PreviewMsg carries a downsampled frame.
type PreviewMsg struct {
	Frame *image.RGBA
}

// CompleteMsg signals the end of the run, successful or not.
type CompleteMsg struct {
	Output   string
	Result   pipeline.Result
	FileSize uint64
	Err      error
}

// progressQuitMsg is sent when it's time to quit after showing completion
type progressQuitMsg struct{}

// Model is the bubbletea model for a render.
type Model struct {
	progressBar progress.Model
	queueBar    progress.Model

	summary  *pipeline.Summary
	state    pipeline.Progress
	complete *CompleteMsg

	preview  string
	detached *atomic.Bool
	noPrev   bool

	cancel     func()
	cancelling bool

	startTime       time.Time
	completionDelay time.Duration
	width           int
}

// NewModel creates the render UI. cancel is called on ctrl+c; with
// noPreview the preview is never drawn.
func NewModel(noPreview bool, cancel func()) *Model {
	// Phosphor gradient: dim trace → bright trace
	p := progress.New(
		progress.WithGradient(string(cli.PhosphorDim), string(cli.PhosphorBright)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	// Smaller bar for queue occupancy
	q := progress.New(
		progress.WithGradient(string(cli.PhosphorGreen), string(cli.ScopeAmber)),
		progress.WithWidth(20),
		progress.WithoutPercentage(),
	)

	detached := &atomic.Bool{}
	detached.Store(noPreview)

	return &Model{
		progressBar:     p,
		queueBar:        q,
		detached:        detached,
		noPrev:          noPreview,
		cancel:          cancel,
		startTime:       time.Now(),
		completionDelay: 2 * time.Second,
	}
}

// PreviewHook returns a pipeline preview function that forwards downsampled
// frames to program until the user closes the preview.
func (m *Model) PreviewHook(program *tea.Program, cfg PreviewConfig) pipeline.PreviewFunc {
	detached := m.detached
	return func(img *image.RGBA) bool {
		if detached.Load() {
			return false
		}
		program.Send(PreviewMsg{Frame: DownsampleFrame(img, cfg)})
		return true
	}
}

// PreviewDetached reports whether the preview has been closed.
func (m *Model) PreviewDetached() bool {
	return m.detached.Load()
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = max(min(msg.Width-30, 50), 10)
		return m, nil

	case StartedMsg:
		s := pipeline.Summary(msg)
		m.summary = &s
		m.startTime = time.Now()
		return m, nil

	case ProgressMsg:
		m.state = pipeline.Progress(msg)
		return m, nil

	case PreviewMsg:
		if !m.detached.Load() && msg.Frame != nil {
			m.preview = RenderPreview(msg.Frame)
		}
		return m, nil

	case CompleteMsg:
		m.complete = &msg
		return m, tea.Tick(m.completionDelay, func(time.Time) tea.Msg {
			return progressQuitMsg{}
		})

	case progressQuitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.complete != nil {
			return m, tea.Quit
		}
		switch msg.String() {
		case "ctrl+c":
			if m.cancelling {
				// Second interrupt: stop waiting for the drain
				return m, tea.Quit
			}
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		case "q", "esc":
			m.detached.Store(true)
			m.preview = ""
		}
	}

	return m, nil
}

// View renders the UI
func (m *Model) View() string {
	if m.complete != nil {
		return m.renderFinal()
	}
	return m.renderProgress()
}

func (m *Model) header(s *strings.Builder, phase string) {
	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cli.PhosphorBright).Render("Oscigen ∿"))
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Foreground(cli.ScopeAmber).Render(phase))
	s.WriteString("\n\n")
}

func (m *Model) renderProgress() string {
	var s strings.Builder

	phase := "Rendering & Encoding"
	if m.cancelling {
		phase = "Stopping: writing queued frames"
	}
	m.header(&s, phase)

	if m.state.TotalFrames == 0 {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Starting render..."))
		s.WriteString("\n")
	} else {
		m.renderBar(&s)
	}

	if m.summary != nil {
		s.WriteString("\n")
		m.renderSource(&s)
	}

	if m.preview != "" && !m.detached.Load() {
		s.WriteString("\n")
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("Preview (q to close):"))
		s.WriteString("\n")
		s.WriteString(m.preview)
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(cli.PhosphorGreen).
		Padding(1, 2).
		Render(s.String())
}

func (m *Model) renderBar(s *strings.Builder) {
	ratio := m.state.Percent / 100

	s.WriteString("Progress: ")
	s.WriteString(m.progressBar.ViewAs(ratio))
	s.WriteString(fmt.Sprintf("  %.2f%%", m.state.Percent))
	s.WriteString("\n\n")

	elapsed := m.state.Elapsed
	var eta time.Duration
	var speed float64
	if ratio > 0 {
		eta = time.Duration(float64(elapsed)/ratio) - elapsed
	}
	if m.summary != nil && elapsed > 0 {
		video := time.Duration(m.state.Frame) * time.Second / time.Duration(m.summary.FPS)
		speed = float64(video) / float64(elapsed)
	}

	s.WriteString(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf(
		"Time: %s  │  Speed: %s  │  ETA: %s",
		cli.FormatDuration(elapsed), cli.FormatSpeed(speed), cli.FormatDuration(eta))))
	s.WriteString("\n")

	queueRatio := 0.0
	if m.state.QueueCap > 0 {
		queueRatio = float64(m.state.QueueDepth) / float64(m.state.QueueCap)
	}
	s.WriteString(lipgloss.NewStyle().Faint(true).Italic(true).Render(
		fmt.Sprintf("Frame %d of %d  │  Written %s  │  Queue ",
			m.state.Frame, m.state.TotalFrames, humanize.IBytes(m.state.Bytes))))
	s.WriteString(m.queueBar.ViewAs(queueRatio))
	s.WriteString("\n")
}

func (m *Model) renderSource(s *strings.Builder) {
	label := lipgloss.NewStyle().Foreground(cli.GridGray)
	value := lipgloss.NewStyle().Bold(true)

	sum := m.summary
	s.WriteString(label.Render("Master: "))
	s.WriteString(value.Render(fmt.Sprintf("%s  %.1fkHz %dch  %.1fs",
		sum.Master, float64(sum.SampleRate)/1000, sum.Channels, sum.Duration.Seconds())))
	s.WriteString("\n")
	s.WriteString(label.Render("Video:  "))
	s.WriteString(value.Render(fmt.Sprintf("%s %d×%d @ %dfps, %d waveform(s)",
		sum.Encoder, sum.Width, sum.Height, sum.FPS, sum.Waveforms)))
	s.WriteString("\n")
}

func (m *Model) renderFinal() string {
	var s strings.Builder

	c := m.complete
	switch {
	case c.Err != nil && c.Result.Cancelled:
		m.header(&s, "Cancelled")
	case c.Err != nil:
		m.header(&s, "Failed")
	default:
		m.header(&s, "Complete")
	}

	s.WriteString("Progress: ")
	s.WriteString(m.progressBar.ViewAs(m.state.Percent / 100))
	s.WriteString(fmt.Sprintf("  %.2f%%", m.state.Percent))
	s.WriteString("\n\n")

	label := lipgloss.NewStyle().Faint(true)
	s.WriteString(fmt.Sprintf("%s%s\n", label.Render("Output:   "), c.Output))
	s.WriteString(fmt.Sprintf("%s%d of %d frames in %s\n", label.Render("Frames:   "),
		c.Result.Frames, c.Result.TotalFrames, cli.FormatDuration(c.Result.Elapsed)))
	s.WriteString(fmt.Sprintf("%s%s\n", label.Render("Size:     "), humanize.IBytes(c.FileSize)))
	s.WriteString(fmt.Sprintf("%s%s", label.Render("Queue:    "),
		fmt.Sprintf("peak %d of %d", c.Result.Stats.PeakQueue, c.Result.Stats.Capacity)))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(cli.ScopeAmber).
		Padding(1, 2).
		Render(s.String()) + "\n"
}

// ProgramReporter forwards pipeline events to a bubbletea program.
type ProgramReporter struct {
	Program *tea.Program
}

func (r ProgramReporter) Started(s pipeline.Summary)   { r.Program.Send(StartedMsg(s)) }
func (r ProgramReporter) Progress(p pipeline.Progress) { r.Program.Send(ProgressMsg(p)) }
