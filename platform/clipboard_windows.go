//go:build windows

package platform

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	kernel32         = windows.NewLazySystemDLL("kernel32.dll")
	openClipboard    = user32.NewProc("OpenClipboard")
	closeClipboard   = user32.NewProc("CloseClipboard")
	emptyClipboard   = user32.NewProc("EmptyClipboard")
	setClipboardData = user32.NewProc("SetClipboardData")
	globalAlloc      = kernel32.NewProc("GlobalAlloc")
	globalFree       = kernel32.NewProc("GlobalFree")
	globalLock       = kernel32.NewProc("GlobalLock")
	globalUnlock     = kernel32.NewProc("GlobalUnlock")
)

const (
	gmemMoveable = 0x0002

	openAttempts = 10
	openBackoff  = 10 * time.Millisecond
)

// WindowsClipboard implements Clipboard on top of user32.
type WindowsClipboard struct{}

// NewClipboard creates a new Windows clipboard instance
func NewClipboard() Clipboard {
	return &WindowsClipboard{}
}

// Open takes clipboard ownership, retrying briefly while another process holds it.
func (c *WindowsClipboard) Open() error {
	var lastErr error
	for i := 0; i < openAttempts; i++ {
		r, _, err := openClipboard.Call(0)
		if r != 0 {
			return nil
		}
		lastErr = err
		time.Sleep(openBackoff)
	}
	return fmt.Errorf("OpenClipboard failed after %d attempts: %w", openAttempts, lastErr)
}

func (c *WindowsClipboard) Empty() error {
	r, _, err := emptyClipboard.Call()
	if r == 0 {
		return fmt.Errorf("EmptyClipboard failed: %w", err)
	}
	return nil
}

// SetData allocates a movable global block, copies payload into it and hands
// it to the clipboard, which owns it from then on.
func (c *WindowsClipboard) SetData(format Format, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("empty clipboard payload")
	}

	h, _, err := globalAlloc.Call(gmemMoveable, uintptr(len(payload)))
	if h == 0 {
		return fmt.Errorf("%w: GlobalAlloc(%d): %v", ErrAllocationFailed, len(payload), err)
	}

	l, _, err := globalLock.Call(h)
	if l == 0 {
		globalFree.Call(h)
		return fmt.Errorf("%w: GlobalLock: %v", ErrAllocationFailed, err)
	}
	dest := unsafe.Slice((*byte)(unsafe.Pointer(l)), len(payload))
	copy(dest, payload)
	globalUnlock.Call(h)

	r, _, err := setClipboardData.Call(uintptr(format), h)
	if r == 0 {
		globalFree.Call(h)
		return fmt.Errorf("SetClipboardData failed: %w", err)
	}
	return nil
}

func (c *WindowsClipboard) Close() error {
	r, _, err := closeClipboard.Call()
	if r == 0 {
		return fmt.Errorf("CloseClipboard failed: %w", err)
	}
	return nil
}
