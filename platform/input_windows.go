//go:build windows

package platform

import (
	"fmt"
	"unsafe"
)

var (
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard        = 1
	keyeventfExtendedKey = 0x0001
	keyeventfKeyup       = 0x0002
	mapvkVkToVsc         = 0
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // Padding to match C struct size
}

// WindowsInjector implements Injector with a single SendInput call per batch.
type WindowsInjector struct{}

// NewInjector creates a new Windows input injector
func NewInjector() Injector {
	return &WindowsInjector{}
}

// Dispatch converts events to INPUT records, filling scan codes for
// compatibility with applications that read them, and sends them in order.
func (p *WindowsInjector) Dispatch(events []KeyEvent) error {
	if len(events) == 0 {
		return nil
	}

	scans := make(map[Key]uint16)
	inputs := make([]input, len(events))
	for i, e := range events {
		scan, ok := scans[e.Key]
		if !ok {
			r, _, _ := mapVirtualKeyW.Call(uintptr(e.Key), mapvkVkToVsc)
			scan = uint16(r)
			scans[e.Key] = scan
		}

		var flags uint32
		if e.Key.Extended() {
			flags |= keyeventfExtendedKey
		}
		if e.Phase == Up {
			flags |= keyeventfKeyup
		}

		inputs[i] = input{
			inputType: inputKeyboard,
			ki: keyboardInput{
				wVk:     uint16(e.Key),
				wScan:   scan,
				dwFlags: flags,
			},
		}
	}

	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(ret) != len(inputs) {
		return fmt.Errorf("SendInput accepted %d of %d events: %w", ret, len(inputs), err)
	}
	return nil
}
