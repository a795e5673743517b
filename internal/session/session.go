// Package session implements the dictation lifecycle state machine: it owns
// the single active Session, serializes every transition on one executor
// goroutine, and drives the UI collaborator, the transcription worker, and
// the clipboard sink through that executor.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/v01gh7/rapidwhisper/internal/apperrors"
	"github.com/v01gh7/rapidwhisper/internal/fsm"
)

// Session is one press-to-release dictation attempt.
type Session struct {
	ID           string
	StartedAt    time.Time
	ManualFormat string
}

// UI is the external collaborator the state machine drives via its
// callbacks: window visibility, the capture handoff, the transcription
// handoff, and result/error presentation.
type UI interface {
	OnShowWindow(ctx context.Context)
	OnHideWindow(ctx context.Context)
	OnStartRecording(ctx context.Context) error
	OnStopRecording(ctx context.Context) (audioPath string, err error)
	OnCancelRecording(ctx context.Context)
	OnStartTranscription(ctx context.Context, audioPath string)
	OnDisplayResult(ctx context.Context, text string)
	OnShowError(ctx context.Context, err error)
}

// noopUI preserves session flow when no UI is wired (e.g. in tests).
type noopUI struct{}

func (noopUI) OnShowWindow(context.Context)                    {}
func (noopUI) OnHideWindow(context.Context)                    {}
func (noopUI) OnStartRecording(context.Context) error          { return nil }
func (noopUI) OnStopRecording(context.Context) (string, error) { return "", apperrors.ErrEmptyRecording }
func (noopUI) OnCancelRecording(context.Context)                {}
func (noopUI) OnStartTranscription(context.Context, string)     {}
func (noopUI) OnDisplayResult(context.Context, string)          {}
func (noopUI) OnShowError(context.Context, error)                {}

// event is one posted trigger, carrying whatever payload its fsm.Event
// needs. Events are consumed strictly in post order by a single goroutine.
type event struct {
	kind      fsm.Event
	sessionID string
	text      string
	err       error
}

// Loop is the serialized executor owning the session state machine.
type Loop struct {
	logger        *slog.Logger
	ui            UI
	worker        TranscriptionWorker
	commit        Committer
	manualFormat  *ManualFormat
	autoHideDelay time.Duration
	newSessionID  func() string

	events chan event

	mu      sync.Mutex
	state   fsm.State
	session *Session

	displayTimer *time.Timer
	workerCancel context.CancelFunc
}

// Option configures a Loop at construction time.
type Option func(*Loop)

// WithAutoHideDelay overrides the default Displaying auto-hide timeout.
func WithAutoHideDelay(d time.Duration) Option {
	return func(l *Loop) { l.autoHideDelay = d }
}

// NewLoop constructs a session executor with safe default fallbacks.
func NewLoop(logger *slog.Logger, ui UI, worker TranscriptionWorker, commit Committer, manualFormat *ManualFormat, opts ...Option) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if ui == nil {
		ui = noopUI{}
	}
	if worker == nil {
		worker = PlaceholderWorker{}
	}
	if commit == nil {
		commit = CommitFunc(func(context.Context, string) error { return nil })
	}
	if manualFormat == nil {
		manualFormat = NewManualFormat(logger)
	}

	l := &Loop{
		logger:        logger,
		ui:            ui,
		worker:        worker,
		commit:        commit,
		manualFormat:  manualFormat,
		autoHideDelay: 3 * time.Second,
		newSessionID:  newSessionID,
		state:         fsm.StateIdle,
		events:        make(chan event, 16),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current FSM state snapshot.
func (l *Loop) State() fsm.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// CurrentSession returns a copy of the active session, or nil if idle.
func (l *Loop) CurrentSession() *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.session == nil {
		return nil
	}
	sess := *l.session
	return &sess
}

// SetManualFormat stages a format-selection tag for the next recording.
func (l *Loop) SetManualFormat(tag string) {
	l.manualFormat.Set(tag)
}

// Run processes posted events one at a time until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-l.events:
			l.handle(ctx, ev)
		}
	}
}

// PostHotkeyPressed enqueues the dictation hotkey trigger.
func (l *Loop) PostHotkeyPressed(ctx context.Context) {
	l.post(ctx, event{kind: fsm.EventHotkeyPressed})
}

// PostCancelPressed enqueues the cancel hotkey trigger.
func (l *Loop) PostCancelPressed(ctx context.Context) {
	l.post(ctx, event{kind: fsm.EventCancelPressed})
}

// PostSilenceDetected enqueues the VAD end-of-utterance trigger.
func (l *Loop) PostSilenceDetected(ctx context.Context) {
	l.post(ctx, event{kind: fsm.EventSilenceDetected})
}

// PostDisplayTimeout enqueues the auto-hide timeout trigger.
func (l *Loop) PostDisplayTimeout(ctx context.Context) {
	l.post(ctx, event{kind: fsm.EventDisplayTimeoutElaps})
}

// PostFatalError enqueues a fatal error from any collaborator.
func (l *Loop) PostFatalError(ctx context.Context, err error) {
	l.post(ctx, event{kind: fsm.EventFatalError, err: err})
}

func (l *Loop) postTranscriptionComplete(ctx context.Context, sessionID, text string) {
	l.post(ctx, event{kind: fsm.EventTranscriptionOK, sessionID: sessionID, text: text})
}

func (l *Loop) postTranscriptionError(ctx context.Context, sessionID string, err error) {
	l.post(ctx, event{kind: fsm.EventTranscriptionError, sessionID: sessionID, err: err})
}

func (l *Loop) post(ctx context.Context, ev event) {
	select {
	case l.events <- ev:
	case <-ctx.Done():
	}
}

// handle applies one event against the state machine and runs its action.
// A re-entrant transition to the same state is a no-op. Handlers never call
// handle recursively: a side effect that wants another transition posts a
// new event, which Run consumes after this call returns. A transcription
// result or error whose session ID is not the active session's is discarded
// before any transition is applied.
func (l *Loop) handle(ctx context.Context, ev event) {
	l.mu.Lock()
	from := l.state
	next, err := fsm.Transition(from, ev.kind)
	if err != nil {
		l.mu.Unlock()
		l.logger.Debug("ignored event", "state", from, "event", ev.kind, "error", err)
		return
	}
	if next == from {
		l.mu.Unlock()
		return
	}
	if (ev.kind == fsm.EventTranscriptionOK || ev.kind == fsm.EventTranscriptionError) &&
		(l.session == nil || l.session.ID != ev.sessionID) {
		l.mu.Unlock()
		l.logger.Debug("discarding stale transcription event", "session", ev.sessionID)
		return
	}
	l.state = next
	l.mu.Unlock()

	switch {
	case from == fsm.StateIdle && next == fsm.StateRecording:
		l.onEnterRecording(ctx)
	case from == fsm.StateRecording && next == fsm.StateProcessing:
		l.onEnterProcessing(ctx)
	case from == fsm.StateRecording && next == fsm.StateIdle:
		l.onCancelled(ctx)
	case from == fsm.StateProcessing && next == fsm.StateDisplaying:
		l.onDisplay(ctx, ev)
	case next == fsm.StateError:
		l.onFailed(ctx, ev)
	case from == fsm.StateDisplaying && next == fsm.StateIdle:
		l.onHide(ctx)
	}
}

func (l *Loop) onEnterRecording(ctx context.Context) {
	sess := &Session{
		ID:           l.newSessionID(),
		StartedAt:    time.Now(),
		ManualFormat: l.manualFormat.Peek(),
	}
	l.mu.Lock()
	l.session = sess
	l.mu.Unlock()

	l.ui.OnShowWindow(ctx)
	if err := l.ui.OnStartRecording(ctx); err != nil {
		l.PostFatalError(ctx, err)
	}
}

func (l *Loop) onEnterProcessing(ctx context.Context) {
	sess := l.CurrentSession()
	sessionID := ""
	if sess != nil {
		sessionID = sess.ID
	}

	audioPath, err := l.ui.OnStopRecording(ctx)
	if err != nil {
		l.PostFatalError(ctx, err)
		return
	}
	if strings.TrimSpace(audioPath) == "" {
		l.PostFatalError(ctx, apperrors.ErrEmptyRecording)
		return
	}

	l.ui.OnStartTranscription(ctx, audioPath)

	workerCtx, cancel := context.WithCancel(context.Background())
	l.mu.Lock()
	l.workerCancel = cancel
	l.mu.Unlock()

	go l.runWorker(ctx, workerCtx, sessionID, audioPath)
}

func (l *Loop) runWorker(postCtx, workerCtx context.Context, sessionID, audioPath string) {
	result, err := l.worker.Process(workerCtx, audioPath)
	if err != nil {
		l.postTranscriptionError(postCtx, sessionID, err)
		return
	}
	l.postTranscriptionComplete(postCtx, sessionID, result.Text)
}

func (l *Loop) onCancelled(ctx context.Context) {
	l.ui.OnCancelRecording(ctx)
	l.manualFormat.Clear()
	l.clearSession()
	l.ui.OnHideWindow(ctx)
}

// onDisplay and onFailed discard stale results: a completion for a session
// that is no longer the active Processing entry must never be observed.
func (l *Loop) onDisplay(ctx context.Context, ev event) {
	if l.staleResult(ev.sessionID) {
		l.logger.Debug("discarding stale transcription result", "session", ev.sessionID)
		return
	}

	l.manualFormat.Clear()
	l.clearSession()

	l.ui.OnDisplayResult(ctx, ev.text)
	if err := l.commit.Commit(ctx, ev.text); err != nil {
		l.logger.Warn("clipboard commit failed", "error", err)
	}

	l.armAutoHide(ctx)
}

func (l *Loop) onFailed(ctx context.Context, ev event) {
	if ev.kind == fsm.EventTranscriptionError && l.staleResult(ev.sessionID) {
		l.logger.Debug("discarding stale transcription error", "session", ev.sessionID)
		l.resetFromError(ctx)
		return
	}

	err := ev.err
	if err == nil {
		err = fmt.Errorf("unspecified fatal error")
	}
	l.ui.OnShowError(ctx, err)
	l.clearSession()
	l.resetFromError(ctx)
}

func (l *Loop) onHide(ctx context.Context) {
	l.stopAutoHide()
	l.ui.OnHideWindow(ctx)
}

// resetFromError applies the immediate Error→Idle collapse.
func (l *Loop) resetFromError(ctx context.Context) {
	l.mu.Lock()
	next, err := fsm.Transition(l.state, fsm.EventReset)
	if err == nil {
		l.state = next
	}
	l.mu.Unlock()
}

func (l *Loop) armAutoHide(ctx context.Context) {
	l.stopAutoHide()
	l.mu.Lock()
	l.displayTimer = time.AfterFunc(l.autoHideDelay, func() {
		l.PostDisplayTimeout(ctx)
	})
	l.mu.Unlock()
}

func (l *Loop) stopAutoHide() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.displayTimer != nil {
		l.displayTimer.Stop()
		l.displayTimer = nil
	}
}

func (l *Loop) clearSession() {
	l.mu.Lock()
	l.session = nil
	if l.workerCancel != nil {
		l.workerCancel()
		l.workerCancel = nil
	}
	l.mu.Unlock()
}

func (l *Loop) staleResult(sessionID string) bool {
	sess := l.CurrentSession()
	if sess == nil {
		return true
	}
	return sess.ID != sessionID
}

// newSessionID generates a UUID, falling back to a monotonic synthetic ID
// if the platform's random source is unavailable.
var sessionIDFallbackCounter uint64

func newSessionID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	sessionIDFallbackCounter++
	return fmt.Sprintf("fallback-%d-%d", time.Now().UnixNano(), sessionIDFallbackCounter)
}
