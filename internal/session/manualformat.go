package session

import (
	"log/slog"
	"sync"
)

// ManualFormat holds the optional format-selection tag an external
// collaborator stages before the next HotkeyPressed event. It is read
// once when a session starts and cleared when the session ends.
type ManualFormat struct {
	logger *slog.Logger

	mu    sync.Mutex
	value string
}

// NewManualFormat constructs an empty slot.
func NewManualFormat(logger *slog.Logger) *ManualFormat {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManualFormat{logger: logger}
}

// Set stages tag for the next session to pick up.
func (m *ManualFormat) Set(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = tag
}

// Peek returns the currently staged tag without clearing it. A failure to
// read the slot is logged and treated as unset; it must never block
// recording from starting.
func (m *ManualFormat) Peek() (tag string) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("manual format read failed, treating as unset", "recovered", r)
			tag = ""
		}
	}()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// Clear empties the slot at the end of a session (display or cancel). A
// failure to clear is logged and otherwise ignored.
func (m *ManualFormat) Clear() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("manual format clear failed", "recovered", r)
		}
	}()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
}
