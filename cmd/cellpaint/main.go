package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lixenwraith/cellpaint/capture"
	"github.com/lixenwraith/cellpaint/config"
	"github.com/lixenwraith/cellpaint/core"
	"github.com/lixenwraith/cellpaint/engine"
	"github.com/lixenwraith/cellpaint/logging"
	"github.com/lixenwraith/cellpaint/status"
	"github.com/lixenwraith/cellpaint/terminal"
)

// Process exit codes
const (
	exitOK      = 0
	exitFatal   = 1 // Adapter or startup failure
	exitConfig  = 2
	exitRestore = 3 // Terminal restoration failed after retry
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cellpaint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "TOML config file (default $"+config.EnvConfigPath+")")
	replayPath := fs.String("replay", "", "Replay a capture log headlessly and verify its frames")
	colorFlag := fs.String("color", "", "Color mode: auto, truecolor, 256 (overrides config)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitConfig
	}
	if *colorFlag != "" {
		cfg.Color = *colorFlag
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "cellpaint: -color: %v\n", err)
			return exitConfig
		}
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	log, closer, err := logging.New(cfg.LogFile, level)
	if err != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitFatal
	}
	defer closer.Close()

	if *replayPath != "" {
		return runReplay(*replayPath, cfg, log, stdout, stderr)
	}
	return runTerminal(cfg, log, stderr)
}

// runTerminal owns the real terminal: raw mode, guard, scheduler, restore
func runTerminal(cfg config.Config, log *slog.Logger, stderr io.Writer) int {
	mouse := terminal.MouseModeNone
	if cfg.Mouse {
		mouse = terminal.MouseModeClick | terminal.MouseModeMotion
	}
	term := terminal.New(terminal.Options{
		Mouse:  mouse,
		Focus:  cfg.Focus,
		Paste:  true,
		Logger: log,
	})

	if err := term.EnterRawMode(); err != nil {
		if rerr := term.LeaveRawMode(); rerr != nil {
			fmt.Fprintf(stderr, "cellpaint: %v\n", rerr)
		}
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitFatal
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guard := terminal.AcquireGuard(term, terminal.GuardOptions{Cancel: cancel, Logger: log})
	core.SetCrashHandler(guard.Release)
	defer core.SetCrashHandler(nil)

	reg := status.NewRegistry()
	opts := []engine.Option{engine.WithLogger(log), engine.WithRegistry(reg), engine.WithMouseMode(mouse)}
	if cfg.CaptureFile != "" {
		rec, err := capture.Open(cfg.CaptureFile)
		if err != nil {
			releaseErr := guard.Release()
			fmt.Fprintf(stderr, "cellpaint: %v\n", err)
			if releaseErr != nil {
				return exitRestore
			}
			return exitFatal
		}
		defer rec.Close()
		log.Info("capturing", "file", cfg.CaptureFile, "session", rec.Session())
		opts = append(opts, engine.WithRecorder(rec))
	}

	sched := engine.NewScheduler[pageState](cfg, term, statusPage{}, opts...)
	runErr := sched.Run(ctx)

	if err := guard.Release(); err != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitRestore
	}
	if runErr != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", runErr)
		return exitFatal
	}
	return exitOK
}

// runReplay feeds the last session of a capture log through the status page and compares frames
func runReplay(path string, cfg config.Config, log *slog.Logger, stdout, stderr io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitFatal
	}
	records, err := capture.ReadAll(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitFatal
	}
	if len(records) == 0 {
		fmt.Fprintf(stderr, "cellpaint: %s: empty capture\n", path)
		return exitFatal
	}
	records = capture.Session(records, records[len(records)-1].Session)

	size := capture.InitialSize(records, terminal.DefaultSize)
	rp, err := capture.NewReplayer(records, size.Rows, size.Cols)
	if err != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitFatal
	}

	var out bytes.Buffer
	rec := capture.NewRecorder(&out)
	sched := engine.NewScheduler[pageState](cfg, rp, statusPage{},
		engine.WithLogger(log),
		engine.WithRecorder(rec),
	)
	if err := sched.Run(context.Background()); err != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitFatal
	}
	rec.Close()

	replayed, err := capture.ReadAll(&out)
	if err != nil {
		fmt.Fprintf(stderr, "cellpaint: %v\n", err)
		return exitFatal
	}
	matched, err := capture.Compare(records, replayed)
	if err != nil {
		fmt.Fprintf(stderr, "cellpaint: replay mismatch: %v\n", err)
		return exitFatal
	}
	fmt.Fprintf(stdout, "replayed %s: %d frames compared, %d matched\n",
		path, len(capture.Frames(replayed)), matched)
	return exitOK
}
