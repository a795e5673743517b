package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/v01gh7/rapidwhisper/internal/apperrors"
	"github.com/v01gh7/rapidwhisper/internal/audio"
	"github.com/v01gh7/rapidwhisper/internal/clipboard"
	"github.com/v01gh7/rapidwhisper/internal/config"
	"github.com/v01gh7/rapidwhisper/internal/indicator"
	"github.com/v01gh7/rapidwhisper/internal/session"
	"github.com/v01gh7/rapidwhisper/internal/statistics"
	"github.com/v01gh7/rapidwhisper/internal/vad"
)

// daemonUI implements session.UI against the real collaborators: Pulse
// capture, the streaming silence detector, the clipboard sink, and the
// statistics ledger. The settings GUI, floating window, and waveform
// widget an external desktop shell might render have no implementation
// here; OnShowWindow/OnHideWindow, OnStartTranscription, OnDisplayResult
// and OnShowError log and drive the desktop notification indicator, so
// tray notifications have a concrete (if minimal) implementation in this
// repo.
type daemonUI struct {
	logger    *slog.Logger
	cfg       config.Config
	clipboard clipboard.Sink
	stats     *statistics.Ledger
	notifier  indicator.Controller

	recordingsDir string
	vadDetector   *vad.Detector

	// loop is set once by setLoop after session.NewLoop is constructed, so
	// the VAD goroutine started from OnStartRecording can post back into
	// it. A daemonUI only ever drives one session.Loop.
	loop *session.Loop

	mu       sync.Mutex
	engine   *audio.Engine
	cancelCh chan struct{}
}

// setLoop wires the session executor this UI posts VAD events into.
func (u *daemonUI) setLoop(l *session.Loop) {
	u.loop = l
}

func newDaemonUI(logger *slog.Logger, cfg config.Config, sink clipboard.Sink, stats *statistics.Ledger, notifier indicator.Controller, recordingsDir string) *daemonUI {
	return &daemonUI{
		logger:        logger,
		cfg:           cfg,
		clipboard:     sink,
		stats:         stats,
		notifier:      notifier,
		recordingsDir: recordingsDir,
		vadDetector: vad.New(vad.Params{
			Threshold:         cfg.VAD.SilenceThreshold,
			SilenceDuration:   cfg.VAD.SilenceDuration,
			MinSpeechDuration: vad.DefaultParams().MinSpeechDuration,
		}),
	}
}

func (u *daemonUI) OnShowWindow(ctx context.Context) {
	u.logger.Debug("show window")
	if u.notifier != nil {
		u.notifier.ShowRecording(ctx)
	}
}

func (u *daemonUI) OnHideWindow(ctx context.Context) {
	u.logger.Debug("hide window")
	if u.notifier != nil {
		u.notifier.Hide(ctx)
	}
}

// OnStartRecording opens the capture engine and, unless manual_stop is
// configured, starts a VAD loop that posts SilenceDetected back onto loop.
func (u *daemonUI) OnStartRecording(ctx context.Context) error {
	engine, err := audio.Start(ctx, audio.Params{
		SampleRate:      u.cfg.Audio.SampleRate,
		ChunkSize:       u.cfg.Audio.ChunkSize,
		RecordingsDir:   u.recordingsDir,
		MinFloorSeconds: u.cfg.Behavior.MinRecordingSeconds,
	})
	if err != nil {
		return err
	}

	u.mu.Lock()
	u.engine = engine
	u.cancelCh = make(chan struct{})
	cancelCh := u.cancelCh
	u.mu.Unlock()

	u.vadDetector.Reset()

	go drainChunks(engine)
	if !u.cfg.Behavior.ManualStop {
		go u.runVAD(ctx, engine, cancelCh)
	}

	return nil
}

// runVAD feeds RMS samples to the detector and posts SilenceDetected on
// end-of-utterance. It always drains RMS() even when idle-looking, since
// the capture engine blocks its producer goroutine once the channel fills.
func (u *daemonUI) runVAD(ctx context.Context, engine *audio.Engine, cancelCh chan struct{}) {
	for sample := range engine.RMS() {
		select {
		case <-cancelCh:
			continue
		default:
		}
		if u.vadDetector.Update(sample.RMS, sample.Timestamp) {
			u.loop.PostSilenceDetected(ctx)
		}
	}
}

func drainChunks(engine *audio.Engine) {
	for range engine.Chunks() {
	}
}

func (u *daemonUI) OnStopRecording(context.Context) (string, error) {
	u.mu.Lock()
	engine := u.engine
	u.engine = nil
	u.mu.Unlock()

	if engine == nil {
		return "", apperrors.ErrPipelineUnavailable
	}

	path, err := engine.Stop()
	if err != nil {
		return "", err
	}

	duration := float64(engine.SamplesCaptured()) / float64(u.cfg.Audio.SampleRate)
	if err := u.stats.TrackRecording(duration); err != nil {
		u.logger.Warn("failed to record recording statistic", "error", err)
	}
	return path, nil
}

func (u *daemonUI) OnCancelRecording(ctx context.Context) {
	u.mu.Lock()
	engine := u.engine
	cancelCh := u.cancelCh
	u.engine = nil
	u.mu.Unlock()

	if u.notifier != nil {
		u.notifier.CueCancel(ctx)
	}

	if cancelCh != nil {
		close(cancelCh)
	}
	if engine == nil {
		return
	}
	if _, err := engine.Cancel(); err != nil {
		u.logger.Warn("cancel recording failed", "error", err)
	}
}

func (u *daemonUI) OnStartTranscription(ctx context.Context, audioPath string) {
	u.logger.Info("transcription started", "path", audioPath)
	if u.notifier != nil {
		u.notifier.ShowTranscribing(ctx)
	}
}

func (u *daemonUI) OnDisplayResult(ctx context.Context, text string) {
	u.logger.Info("display result", "length", len(text))
	if u.notifier != nil {
		u.notifier.ShowResult(ctx, text)
	}
}

func (u *daemonUI) OnShowError(ctx context.Context, err error) {
	u.logger.Error("session error", "error", err.Error())
	if u.notifier != nil {
		u.notifier.ShowError(ctx, err.Error())
	}
}

// committer adapts the clipboard sink to session.Committer, treating a
// failed write as a soft failure so it never blocks result display.
type committer struct {
	sink   clipboard.Sink
	logger *slog.Logger
}

func (c *committer) Commit(_ context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.New(apperrors.KindEmptyResponse, "empty transcript")
	}
	if !c.sink.CopyPlain(text) {
		return apperrors.New(apperrors.KindAudioDevice, "clipboard write failed")
	}
	return nil
}
