// Package indicator is the reference UI-notification collaborator: it
// turns session lifecycle transitions into desktop tray notifications
// (over DBus) and a short audio cue per transition, using the
// IndicatorConfig knobs resolved by internal/config. It is not part of the
// core state machine; daemonUI drives it from the session.UI callbacks it
// already implements.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/v01gh7/rapidwhisper/internal/config"
)

// Controller is the session-facing indicator contract.
type Controller interface {
	ShowRecording(context.Context)
	ShowTranscribing(context.Context)
	ShowResult(context.Context, string)
	ShowError(context.Context, string)
	CueCancel(context.Context)
	Hide(context.Context)
}

// Desktop is the concrete indicator implementation used by runtime sessions.
type Desktop struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages

	mu                    sync.Mutex
	desktopNotificationID uint32
	soundMu               sync.Mutex
}

// New constructs an indicator controller from config.
func New(cfg config.IndicatorConfig, logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{
		cfg:      cfg,
		logger:   logger,
		messages: indicatorMessagesFromEnv(),
	}
}

// ShowRecording signals recording start and emits the start cue.
func (d *Desktop) ShowRecording(ctx context.Context) {
	d.playCue(cueStart)
	if !d.cfg.Enable {
		return
	}
	d.run(ctx, func(ctx context.Context) error {
		return d.notify(ctx, 3000, d.messages.recording)
	})
}

// ShowTranscribing signals the post-capture transcription state.
func (d *Desktop) ShowTranscribing(ctx context.Context) {
	d.playCue(cueStop)
	if !d.cfg.Enable {
		return
	}
	d.run(ctx, func(ctx context.Context) error {
		return d.notify(ctx, 3000, d.messages.processing)
	})
}

// ShowResult displays the finished transcript and emits the completion cue.
func (d *Desktop) ShowResult(ctx context.Context, text string) {
	d.playCue(cueComplete)
	if !d.cfg.Enable {
		return
	}
	summary := strings.TrimSpace(text)
	if summary == "" {
		summary = d.messages.processing
	}
	d.run(ctx, func(ctx context.Context) error {
		return d.notify(ctx, 2500, summary)
	})
}

// ShowError displays an error-state indicator message.
func (d *Desktop) ShowError(ctx context.Context, text string) {
	if text == "" {
		text = d.messages.errorText
	}
	if !d.cfg.Enable {
		return
	}
	timeout := d.cfg.ErrorTimeoutMS
	if timeout <= 0 {
		timeout = 1200
	}
	d.run(ctx, func(ctx context.Context) error {
		return d.notify(ctx, timeout, text)
	})
}

// CueCancel emits the cancel cue without a notification.
func (d *Desktop) CueCancel(context.Context) {
	d.playCue(cueCancel)
}

// Hide dismisses the active notification surface.
func (d *Desktop) Hide(ctx context.Context) {
	if !d.cfg.Enable {
		return
	}
	d.run(ctx, d.dismiss)
}

func (d *Desktop) notify(ctx context.Context, timeoutMS int, text string) error {
	d.mu.Lock()
	replaceID := d.desktopNotificationID
	d.mu.Unlock()

	appName := strings.TrimSpace(d.cfg.DesktopAppName)
	if appName == "" {
		appName = "rapidwhisper"
	}

	id, err := desktopNotify(ctx, appName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.desktopNotificationID = id
	d.mu.Unlock()
	return nil
}

func (d *Desktop) dismiss(ctx context.Context) error {
	d.mu.Lock()
	id := d.desktopNotificationID
	d.desktopNotificationID = 0
	d.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes an indicator operation with a bounded timeout so a hung
// notification backend never stalls the session executor.
func (d *Desktop) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		d.log("indicator dispatch failed", err)
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (d *Desktop) playCue(kind cueKind) {
	if !d.cfg.SoundEnable {
		return
	}
	go func() {
		d.soundMu.Lock()
		defer d.soundMu.Unlock()
		if err := emitCue(kind); err != nil {
			d.log("indicator audio cue failed", err)
		}
	}()
}

func (d *Desktop) log(message string, err error) {
	if d.logger == nil || err == nil {
		return
	}
	d.logger.Debug(message, "error", err.Error())
}
