package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/oscigen/internal/audio"
	"github.com/linuxmatters/oscigen/internal/cli"
	"github.com/linuxmatters/oscigen/internal/config"
	"github.com/linuxmatters/oscigen/internal/encoder"
	"github.com/linuxmatters/oscigen/internal/pipeline"
	"github.com/linuxmatters/oscigen/internal/ui"
	"github.com/mattn/go-isatty"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

// Exit statuses
const (
	exitOK        = 0
	exitFailure   = 1
	exitCancelled = 130 // 128 + SIGINT
)

// CLI is the command line. Help is bound to -? because -h selects headless
// mode.
type CLI struct {
	Inputs   []string `name:"input" short:"i" help:"Input audio files; the first is the master soundtrack" placeholder:"FILE" sep:"none"`
	Output   string   `name:"output" short:"o" help:"Output video file" default:"output.mp4" placeholder:"PATH"`
	Headless bool     `name:"headless" short:"h" help:"Disable the video preview"`
	Help     bool     `name:"help" short:"?" help:"Show this help"`

	Config   string  `help:"TOML settings file" placeholder:"FILE" type:"path"`
	Title    string  `help:"Title drawn at the top of the video"`
	Encoder  string  `help:"Video encoder: none, auto, nvenc, qsv, vaapi, vulkan, videotoolbox" default:"none" enum:"none,auto,nvenc,qsv,vaapi,vulkan,videotoolbox"`
	Snapshot string  `help:"Render a single frame to this PNG instead of a video" placeholder:"PNG" type:"path"`
	At       float64 `help:"Snapshot offset in seconds" default:"0"`

	ListEncoders bool `name:"list-encoders" help:"Probe hardware encoders and exit"`
	Version      bool `help:"Show version information"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var c CLI
	parser, err := kong.New(&c,
		kong.Name("oscigen"),
		kong.Description("Render audio tracks as stabilised oscilloscope waveforms into an MP4."),
		kong.Vars{"version": version},
		kong.NoDefaultHelp(),
		kong.Writers(stdout, stderr),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)
	if err != nil {
		cli.PrintError(err.Error())
		return exitFailure
	}

	ctx, err := parser.Parse(expandInputArgs(args))
	if err != nil {
		cli.PrintError(err.Error())
		var perr *kong.ParseError
		if errors.As(err, &perr) && perr.Context != nil {
			_ = perr.Context.PrintUsage(true)
		}
		return exitFailure
	}

	if c.Help {
		_ = ctx.PrintUsage(false)
		return exitOK
	}

	if c.Version {
		cli.PrintVersion(version)
		return exitOK
	}

	settings, err := resolveSettings(c)
	if err != nil {
		cli.PrintError(err.Error())
		return exitFailure
	}

	if c.ListEncoders {
		fmt.Fprint(stdout, encoder.GetEncoderStatus(context.Background(), settings.FFmpegPath))
		return exitOK
	}

	if len(c.Inputs) == 0 {
		cli.PrintError("at least one input is required (-i <file>)")
		_ = ctx.PrintUsage(true)
		return exitFailure
	}

	tracks, err := audio.LoadTracks(c.Inputs, func(name string, err error) {
		cli.PrintWarning(fmt.Sprintf("skipping %s: %v", name, err))
	})
	if err != nil {
		cli.PrintError(err.Error())
		return exitFailure
	}

	if c.Snapshot != "" {
		at := time.Duration(c.At * float64(time.Second))
		if err := pipeline.Snapshot(tracks, settings, at, c.Snapshot); err != nil {
			cli.PrintError(err.Error())
			return exitFailure
		}
		cli.PrintSuccess(fmt.Sprintf("Snapshot: %s", c.Snapshot))
		return exitOK
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	opts := pipeline.Options{
		Tracks:   tracks,
		Output:   c.Output,
		Settings: settings,
		HWAccel:  encoder.HWAccelType(c.Encoder),
	}

	var res pipeline.Result
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		res, err = runInteractive(runCtx, cancel, opts, c.Headless)
	} else {
		opts.Reporter = ui.NewPlainReporter(stdout)
		res, err = pipeline.Run(runCtx, opts)
	}

	switch {
	case errors.Is(err, context.Canceled):
		cli.PrintWarning(fmt.Sprintf("cancelled after %d of %d frames; %s is truncated", res.Frames, res.TotalFrames, c.Output))
		return exitCancelled
	case err != nil:
		cli.PrintError(err.Error())
		return exitFailure
	}

	cli.PrintSummary(cli.Summary{
		Output:    c.Output,
		Frames:    res.Frames,
		Encoder:   res.Encoder,
		Duration:  time.Duration(res.Frames) * time.Second / time.Duration(settings.FPS),
		Elapsed:   res.Elapsed,
		FileSize:  fileSize(c.Output),
		PeakQueue: res.Stats.PeakQueue,
		QueueCap:  res.Stats.Capacity,
	})
	return exitOK
}

// runInteractive renders under the bubbletea progress UI.
func runInteractive(ctx context.Context, cancel context.CancelFunc, opts pipeline.Options, headless bool) (pipeline.Result, error) {
	model := ui.NewModel(headless, cancel)
	p := tea.NewProgram(model)

	opts.Reporter = ui.ProgramReporter{Program: p}
	opts.ProgressEvery = 3
	if !headless {
		opts.Preview = model.PreviewHook(p, ui.DefaultPreviewConfig())
	}

	type outcome struct {
		res pipeline.Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := pipeline.Run(ctx, opts)
		p.Send(ui.CompleteMsg{
			Output:   opts.Output,
			Result:   res,
			FileSize: fileSize(opts.Output),
			Err:      err,
		})
		done <- outcome{res, err}
	}()

	if _, err := p.Run(); err != nil {
		// The UI failed; stop rendering but still let the output finalise
		cancel()
		out := <-done
		return out.res, fmt.Errorf("running UI: %w", err)
	}

	out := <-done
	return out.res, out.err
}

// resolveSettings layers defaults, the config file and flags.
func resolveSettings(c CLI) (config.Settings, error) {
	s := config.Default()
	if c.Config != "" {
		var err error
		if s, err = config.LoadFile(c.Config, s); err != nil {
			return s, err
		}
	}
	if c.Title != "" {
		s.Title = c.Title
	}
	return s, s.Validate()
}

// expandInputArgs rewrites "-i a b c" as "-i a -i b -i c" so a run of files
// after one -i reaches kong as repeated flags.
func expandInputArgs(args []string) []string {
	out := make([]string, 0, len(args))
	inInputs := false

	for _, arg := range args {
		switch {
		case arg == "--":
			inInputs = false
			out = append(out, arg)
		case arg == "-i" || arg == "--input":
			inInputs = true
			out = append(out, arg)
		case strings.HasPrefix(arg, "-") && arg != "-":
			inInputs = false
			out = append(out, arg)
		case inInputs && len(out) > 0 && out[len(out)-1] != "-i" && out[len(out)-1] != "--input":
			out = append(out, "-i", arg)
		default:
			out = append(out, arg)
		}
	}

	return out
}

func fileSize(path string) uint64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}
