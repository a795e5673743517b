//go:build windows

package clipboard

import (
	"fmt"
	"log/slog"
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsSink writes both CF_UNICODETEXT and a registered "HTML Format"
// payload, ported from original_source/services/rich_clipboard_manager.py's
// win32clipboard-based implementation. golang.org/x/sys/windows exposes
// kernel32's global memory functions directly; user32's clipboard
// functions are resolved by hand via NewLazySystemDLL, the package's own
// idiom for APIs it doesn't wrap.
type windowsSink struct {
	logger *slog.Logger
}

func newPlatformSink(logger *slog.Logger) Sink {
	return &windowsSink{logger: logger}
}

var (
	user32                      = windows.NewLazySystemDLL("user32.dll")
	procOpenClipboard           = user32.NewProc("OpenClipboard")
	procCloseClipboard          = user32.NewProc("CloseClipboard")
	procEmptyClipboard          = user32.NewProc("EmptyClipboard")
	procSetClipboardData        = user32.NewProc("SetClipboardData")
	procRegisterClipboardFormat = user32.NewProc("RegisterClipboardFormatW")
)

const cfUnicodeText = 13

func (s *windowsSink) CopyPlain(text string) bool {
	if err := s.withClipboard(func() error {
		return setClipboardUnicodeText(text)
	}); err != nil {
		s.logger.Warn("clipboard plain-text write failed", "error", err)
		return false
	}
	return true
}

func (s *windowsSink) CopyRich(html string, fallbackPlain string) bool {
	err := s.withClipboard(func() error {
		if err := setClipboardUnicodeText(fallbackPlain); err != nil {
			return err
		}
		htmlFormat, _, _ := procRegisterClipboardFormat.Call(strPtr("HTML Format"))
		if htmlFormat == 0 {
			return fmt.Errorf("register HTML Format clipboard type")
		}
		return setClipboardBytes(uint32(htmlFormat), []byte(buildHTMLClipboardFormat(html)))
	})
	if err != nil {
		s.logger.Warn("clipboard rich-text write failed", "error", err)
		return false
	}
	return true
}

func (s *windowsSink) withClipboard(fn func() error) error {
	ok, _, err := procOpenClipboard.Call(0)
	if ok == 0 {
		return fmt.Errorf("open clipboard: %w", err)
	}
	defer procCloseClipboard.Call()

	if ok, _, err := procEmptyClipboard.Call(); ok == 0 {
		return fmt.Errorf("empty clipboard: %w", err)
	}

	return fn()
}

func setClipboardUnicodeText(text string) error {
	utf16, err := windows.UTF16FromString(text)
	if err != nil {
		return fmt.Errorf("encode utf16: %w", err)
	}
	size := uintptr(len(utf16)) * 2

	handle, err := windows.GlobalAlloc(windows.GMEM_MOVEABLE, size)
	if err != nil {
		return fmt.Errorf("global alloc: %w", err)
	}
	ptr, err := windows.GlobalLock(handle)
	if err != nil {
		return fmt.Errorf("global lock: %w", err)
	}
	copy(unsafe.Slice((*uint16)(ptr), len(utf16)), utf16)
	windows.GlobalUnlock(handle)

	ret, _, callErr := procSetClipboardData.Call(uintptr(cfUnicodeText), uintptr(handle))
	if ret == 0 {
		return fmt.Errorf("set clipboard data: %w", callErr)
	}
	return nil
}

func setClipboardBytes(format uint32, data []byte) error {
	size := uintptr(len(data))

	handle, err := windows.GlobalAlloc(windows.GMEM_MOVEABLE, size)
	if err != nil {
		return fmt.Errorf("global alloc: %w", err)
	}
	ptr, err := windows.GlobalLock(handle)
	if err != nil {
		return fmt.Errorf("global lock: %w", err)
	}
	copy(unsafe.Slice((*byte)(ptr), len(data)), data)
	windows.GlobalUnlock(handle)

	ret, _, callErr := procSetClipboardData.Call(uintptr(format), uintptr(handle))
	if ret == 0 {
		return fmt.Errorf("set clipboard data: %w", callErr)
	}
	return nil
}

func strPtr(s string) uintptr {
	p, err := windows.UTF16PtrFromString(s)
	if err != nil {
		return 0
	}
	return uintptr(unsafe.Pointer(p))
}
