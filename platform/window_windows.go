//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	findWindowW         = user32.NewProc("FindWindowW")
	setForegroundWindow = user32.NewProc("SetForegroundWindow")
	isIconic            = user32.NewProc("IsIconic")
	showWindow          = user32.NewProc("ShowWindow")
)

const swRestore = 9

// WindowsLocator implements WindowLocator with FindWindowW.
type WindowsLocator struct{}

// NewWindowLocator creates a new Windows window locator
func NewWindowLocator() WindowLocator {
	return &WindowsLocator{}
}

// Find looks up a top-level window by exact title. The handle is not cached.
func (l *WindowsLocator) Find(title string) (Window, error) {
	t, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return Window{}, fmt.Errorf("invalid window title %q: %w", title, err)
	}

	hwnd, _, _ := findWindowW.Call(0, uintptr(unsafe.Pointer(t)))
	if hwnd == 0 {
		return Window{}, fmt.Errorf("%w: %q", ErrWindowNotFound, title)
	}
	return Window{Handle: hwnd, Title: title}, nil
}

// Focus restores a minimized window and asks for it to become the foreground window.
func (l *WindowsLocator) Focus(w Window) error {
	if r, _, _ := isIconic.Call(w.Handle); r != 0 {
		showWindow.Call(w.Handle, swRestore)
	}

	r, _, err := setForegroundWindow.Call(w.Handle)
	if r == 0 {
		return fmt.Errorf("SetForegroundWindow(0x%X) refused: %v", w.Handle, err)
	}
	return nil
}
