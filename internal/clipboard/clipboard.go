// Package clipboard implements the Clipboard Sink: writing plain text, or
// rich HTML with a plain-text fallback, to the system clipboard.
package clipboard

import (
	"fmt"
	"log/slog"
	"strings"
)

// Sink writes a finished transcript to the system clipboard. Both
// operations share a contract: failure to write returns false but never
// panics, matching original_source/services/clipboard_manager.py's
// try/except-returns-bool style.
type Sink interface {
	// CopyPlain writes text as the sole clipboard payload.
	CopyPlain(text string) bool
	// CopyRich registers both an HTML-formatted payload and a plain-text
	// fallback under their platform-native clipboard flavors, so
	// applications without HTML support still receive fallbackPlain.
	CopyRich(html string, fallbackPlain string) bool
}

// New constructs the platform-appropriate Sink implementation.
func New(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return newPlatformSink(logger)
}

// buildHTMLClipboardFormat wraps html in a minimal document and computes the
// Version:0.9/StartHTML/EndHTML/StartFragment/EndFragment byte-offset header
// the Windows HTML clipboard format requires, following
// original_source/services/rich_clipboard_manager.py's
// _create_html_clipboard_format byte-for-byte. It is platform-independent
// string arithmetic, factored out of clipboard_windows.go so it can be
// tested without a Windows build.
func buildHTMLClipboardFormat(html string) string {
	htmlDoc := "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n</head>\n<body>\n" + html + "\n</body>\n</html>"

	tempHeader := "Version:0.9\nStartHTML:0000000000\nEndHTML:0000000000\nStartFragment:0000000000\nEndFragment:0000000000\n"
	headerLength := len([]byte(tempHeader))

	startHTML := headerLength + strings.Index(htmlDoc, "<html>")
	endHTML := headerLength + strings.Index(htmlDoc, "</html>") + len("</html>")
	startFragment := headerLength + strings.Index(htmlDoc, "<body>") + len("<body>")
	endFragment := headerLength + strings.Index(htmlDoc, "</body>")

	header := fmt.Sprintf("Version:0.9\nStartHTML:%010d\nEndHTML:%010d\nStartFragment:%010d\nEndFragment:%010d\n",
		startHTML, endHTML, startFragment, endFragment)

	return header + htmlDoc
}
