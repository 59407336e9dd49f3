//go:build !windows

package platform

import (
	"context"
	"fmt"
)

// The automation target only exists on Windows. Elsewhere every capability is
// inert: lookups never find a window, so a reload does nothing.

type noopClipboard struct{}

// NewClipboard returns a clipboard that can never be opened.
func NewClipboard() Clipboard { return noopClipboard{} }

func (noopClipboard) Open() error                  { return ErrUnsupported }
func (noopClipboard) Empty() error                 { return ErrUnsupported }
func (noopClipboard) SetData(Format, []byte) error { return ErrUnsupported }
func (noopClipboard) Close() error                 { return nil }

type noopLocator struct{}

// NewWindowLocator returns a locator that finds nothing.
func NewWindowLocator() WindowLocator { return noopLocator{} }

func (noopLocator) Find(title string) (Window, error) {
	return Window{}, fmt.Errorf("%w: %q", ErrWindowNotFound, title)
}

func (noopLocator) Focus(Window) error { return ErrUnsupported }

type noopInjector struct{}

// NewInjector returns an injector that drops every batch.
func NewInjector() Injector { return noopInjector{} }

func (noopInjector) Dispatch([]KeyEvent) error { return nil }

type noopHotkey struct{}

// NewHotkey returns a listener whose channel only closes when ctx is done.
func NewHotkey() Hotkey { return noopHotkey{} }

func (noopHotkey) Listen(ctx context.Context, _ KeyCombo) (<-chan Event, error) {
	events := make(chan Event)
	go func() {
		<-ctx.Done()
		close(events)
	}()
	return events, nil
}
