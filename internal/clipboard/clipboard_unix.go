//go:build !windows

package clipboard

import (
	"log/slog"

	"github.com/atotto/clipboard"
)

// unixSink uses the X11/Wayland clipboard selection via atotto/clipboard.
// Neither X11 nor Wayland expose a single cross-desktop HTML clipboard
// flavor the way Windows does, so CopyRich here registers only the
// plain-text fallback; the Windows sink is the one that implements the
// full dual-format contract described in original_source's
// rich_clipboard_manager.py.
type unixSink struct {
	logger *slog.Logger
}

func newPlatformSink(logger *slog.Logger) Sink {
	return &unixSink{logger: logger}
}

func (s *unixSink) CopyPlain(text string) bool {
	if err := clipboard.WriteAll(text); err != nil {
		s.logger.Warn("clipboard write failed", "error", err)
		return false
	}
	return true
}

func (s *unixSink) CopyRich(_ string, fallbackPlain string) bool {
	return s.CopyPlain(fallbackPlain)
}
