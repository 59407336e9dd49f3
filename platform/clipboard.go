package platform

import (
	"fmt"
	"log/slog"
)

// WriteText replaces the clipboard contents with text as NUL-terminated
// FormatText. The clipboard is closed on every path once Open succeeded.
//
// On ErrClipboardUnavailable the clipboard is untouched. On ErrAllocationFailed
// it has been emptied and holds nothing.
func WriteText(cb Clipboard, text string) (err error) {
	if err := cb.Open(); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	defer func() {
		if cerr := cb.Close(); cerr != nil {
			slog.Warn("Failed to close clipboard", "error", cerr)
		}
	}()

	if err := cb.Empty(); err != nil {
		return fmt.Errorf("empty clipboard: %w", err)
	}

	payload := make([]byte, len(text)+1)
	copy(payload, text)

	if err := cb.SetData(FormatText, payload); err != nil {
		return fmt.Errorf("set clipboard data: %w", err)
	}
	return nil
}
