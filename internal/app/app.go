package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/v01gh7/rapidwhisper/internal/audio"
	"github.com/v01gh7/rapidwhisper/internal/cli"
	"github.com/v01gh7/rapidwhisper/internal/clipboard"
	"github.com/v01gh7/rapidwhisper/internal/config"
	"github.com/v01gh7/rapidwhisper/internal/doctor"
	"github.com/v01gh7/rapidwhisper/internal/hotkey"
	"github.com/v01gh7/rapidwhisper/internal/indicator"
	"github.com/v01gh7/rapidwhisper/internal/lockfile"
	"github.com/v01gh7/rapidwhisper/internal/logging"
	"github.com/v01gh7/rapidwhisper/internal/session"
	"github.com/v01gh7/rapidwhisper/internal/silencetrim"
	"github.com/v01gh7/rapidwhisper/internal/statistics"
	"github.com/v01gh7/rapidwhisper/internal/transcription"
	"github.com/v01gh7/rapidwhisper/internal/version"
)

// Runner holds process-level dependencies used by command handlers.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Execute is the package entrypoint used by cmd/rapidwhisper/main.go.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// Execute parses CLI arguments, loads config/logging, and dispatches a command.
func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("rapidwhisper"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("rapidwhisper"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus()
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandDevices prints discovered input devices and key availability metadata.
func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			availability,
			muted,
		)
	}

	return 0
}

// commandStatus reports whether a daemon instance currently holds the
// single-instance lockfile, without acquiring or disturbing it.
func (r Runner) commandStatus() int {
	pid, running, err := lockfile.Probe(lockfile.DefaultPath())
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if !running {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}
	fmt.Fprintf(r.Stdout, "running (pid=%d)\n", pid)
	return 0
}

// commandRun acquires the single-instance lockfile, wires the transcription
// worker and session loop to real collaborators, registers global hotkeys,
// and blocks until ctx is cancelled.
func (r Runner) commandRun(ctx context.Context, cfgLoaded config.Loaded, logger *slog.Logger) int {
	lock, err := lockfile.Acquire(lockfile.DefaultPath())
	if err != nil {
		if errors.Is(err, lockfile.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: rapidwhisper is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release lockfile", "error", err)
		}
	}()

	cfg := cfgLoaded.Config

	stats := statistics.New(config.StatisticsPath(cfgLoaded.Path), logger)
	sink := clipboard.New(logger)
	notifier := indicator.New(cfg.Indicator, logger)

	worker := transcription.NewWorker(buildWorkerConfig(cfg), stats, logger)
	recordingsDir := config.RecordingsDir(cfg.Behavior)
	if err := os.MkdirAll(recordingsDir, 0o700); err != nil {
		fmt.Fprintf(r.Stderr, "error: create recordings dir: %v\n", err)
		return 1
	}

	ui := newDaemonUI(logger, cfg, sink, stats, notifier, recordingsDir)
	commit := &committer{sink: sink, logger: logger}
	manualFormat := session.NewManualFormat(logger)

	var opts []session.Option
	if cfg.Behavior.AutoHideDelay > 0 {
		opts = append(opts, session.WithAutoHideDelay(secondsToDuration(cfg.Behavior.AutoHideDelay)))
	}
	loop := session.NewLoop(logger, ui, worker, commit, manualFormat, opts...)
	ui.setLoop(loop)

	hotkeys, err := hotkey.New(logger, cfg.Hotkey.Dictate, cfg.Hotkey.Cancel, cfg.Hotkey.FormatSelect)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: register hotkeys: %v\n", err)
		return 1
	}
	defer hotkeys.Close()

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(runCtx)
	}()

	go r.dispatchHotkeys(runCtx, hotkeys, loop, manualFormat, cfg.Hotkey.FormatTags)

	logger.Info("rapidwhisper daemon started", "pid", os.Getpid())
	<-runCtx.Done()
	<-loopDone

	return 0
}

// dispatchHotkeys forwards fired hotkey events onto the session loop,
// cycling the staged manual-format tag on each FormatSelect press so it is
// read once when the next session starts.
func (r Runner) dispatchHotkeys(ctx context.Context, src *hotkey.Source, loop *session.Loop, manualFormat *session.ManualFormat, formatTags []string) {
	formatIndex := -1
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-src.Events():
			if !ok {
				return
			}
			formatIndex = routeHotkeyEvent(ctx, ev, loop, manualFormat, formatTags, formatIndex)
		}
	}
}

// routeHotkeyEvent applies one fired hotkey event to loop/manualFormat and
// returns the updated format-cycle index.
func routeHotkeyEvent(ctx context.Context, ev hotkey.Event, loop *session.Loop, manualFormat *session.ManualFormat, formatTags []string, formatIndex int) int {
	switch ev.Kind {
	case hotkey.EventDictate:
		loop.PostHotkeyPressed(ctx)
	case hotkey.EventCancel:
		loop.PostCancelPressed(ctx)
	case hotkey.EventFormatSelect:
		if len(formatTags) == 0 {
			return formatIndex
		}
		formatIndex = (formatIndex + 1) % len(formatTags)
		manualFormat.Set(formatTags[formatIndex])
	}
	return formatIndex
}

// buildWorkerConfig derives the transcription pipeline configuration from
// the loaded provider and post-processing sections.
func buildWorkerConfig(cfg config.Config) transcription.WorkerConfig {
	provider := transcription.Provider(strings.ToLower(strings.TrimSpace(cfg.Provider.Name)))
	postProcessProvider := transcription.Provider(strings.ToLower(strings.TrimSpace(cfg.PostProcess.Provider)))

	return transcription.WorkerConfig{
		STT: transcription.STTConfig{
			Provider: provider,
			BaseURL:  cfg.Provider.BaseURL,
			Model:    cfg.Provider.Model,
			APIKey:   cfg.Provider.APIKey,
		},
		LLM: transcription.LLMConfig{
			Provider: postProcessProvider,
			BaseURL:  cfg.PostProcess.BaseURL,
			Model:    cfg.PostProcess.Model,
			APIKey:   cfg.PostProcess.APIKey,
			Prompt:   cfg.PostProcess.Prompt,
		},
		EnableSilenceTrim:    cfg.Behavior.ManualStop,
		SilenceTrim:          silencetrim.DefaultParams(),
		EnablePostProcessing: cfg.PostProcess.Enable,
		KeepRecordings:       cfg.Behavior.KeepRecordings,
	}
}

// secondsToDuration converts a fractional-seconds config value into a
// time.Duration, matching the config package's float64-seconds convention.
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
