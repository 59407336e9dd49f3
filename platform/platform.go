package platform

import (
	"context"
	"errors"
)

var (
	// ErrClipboardUnavailable means the clipboard could not be opened.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	// ErrAllocationFailed means no buffer could be allocated for the clipboard payload.
	ErrAllocationFailed = errors.New("clipboard allocation failed")
	// ErrWindowNotFound means no top-level window carries the requested title.
	ErrWindowNotFound = errors.New("window not found")
	// ErrUnsupported is returned by the no-op implementations on non-Windows builds.
	ErrUnsupported = errors.New("not supported on this platform")
)

// KeyCombo represents a keyboard key combination
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   int // Virtual key code
}

// EventType represents the type of hotkey event
type EventType int

const (
	Pressed EventType = iota
	Released
)

// Event represents a hotkey event
type Event struct {
	Type EventType
}

// Hotkey provides global hotkey detection
type Hotkey interface {
	Listen(ctx context.Context, combo KeyCombo) (<-chan Event, error)
}

// Format identifies a clipboard data representation.
type Format uint32

// FormatText is plain NUL-terminated 8-bit text (CF_TEXT).
const FormatText Format = 1

// Clipboard is the raw clipboard capability. Callers go through WriteText,
// which guarantees Close after a successful Open.
type Clipboard interface {
	Open() error
	Empty() error
	// SetData copies payload into OS-owned memory and installs it under format.
	SetData(format Format, payload []byte) error
	Close() error
}

// Window is an opaque handle to a live top-level window.
type Window struct {
	Handle uintptr
	Title  string
}

// WindowLocator finds and focuses top-level windows.
type WindowLocator interface {
	// Find returns ErrWindowNotFound when no window has exactly this title.
	Find(title string) (Window, error)
	Focus(w Window) error
}

// Injector submits synthetic keyboard input.
type Injector interface {
	// Dispatch hands the whole batch to the OS in a single call.
	Dispatch(events []KeyEvent) error
}

// System bundles the OS capabilities used by the reloader.
type System struct {
	Clipboard Clipboard
	Windows   WindowLocator
	Input     Injector
}

// NewSystem returns the capability set for the current OS.
func NewSystem() System {
	return System{
		Clipboard: NewClipboard(),
		Windows:   NewWindowLocator(),
		Input:     NewInjector(),
	}
}
