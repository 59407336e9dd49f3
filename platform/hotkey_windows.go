//go:build windows

package platform

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	getMessage          = user32.NewProc("GetMessageW")
	postThreadMessage   = user32.NewProc("PostThreadMessageW")
	getAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
	getCurrentThreadID  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whKeyboardLL  = 13
	wmQuit        = 0x0012
	wmKeydown     = 0x0100
	wmSyskeydown  = 0x0104
	llkhfInjected = 0x00000010
)

const (
	vkShift    = 0x10
	vkCtrl     = 0x11
	vkAlt      = 0x12
	vkLwin     = 0x5B
	vkRwin     = 0x5C
	vkLshift   = 0xA0
	vkRshift   = 0xA1
	vkLcontrol = 0xA2
	vkRcontrol = 0xA3
	vkLmenu    = 0xA4
	vkRmenu    = 0xA5
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// WindowsHotkey implements the Hotkey interface with a low-level keyboard hook.
type WindowsHotkey struct {
	mu       sync.Mutex
	combo    KeyCombo
	pressed  bool
	events   chan Event
	threadID uint32
}

// NewHotkey creates a new Windows hotkey listener
func NewHotkey() Hotkey {
	return &WindowsHotkey{}
}

// Listen installs the hook and reports Pressed/Released transitions of combo.
// The returned channel is closed once ctx is done and the hook is removed.
func (h *WindowsHotkey) Listen(ctx context.Context, combo KeyCombo) (<-chan Event, error) {
	h.mu.Lock()
	h.combo = combo
	h.pressed = false
	h.events = make(chan Event, 10)
	events := h.events
	h.mu.Unlock()

	ready := make(chan error, 1)
	go h.runHook(ready)

	if err := <-ready; err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		tid := h.threadID
		h.mu.Unlock()
		postThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
	}()

	return events, nil
}

func (h *WindowsHotkey) runHook(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid, _, _ := getCurrentThreadID.Call()
	h.mu.Lock()
	h.threadID = uint32(tid)
	events := h.events
	h.mu.Unlock()

	hookProc := func(nCode uintptr, wParam uintptr, lParam uintptr) uintptr {
		if int32(nCode) >= 0 {
			h.handleKeyEvent(wParam, (*kbdllhookstruct)(unsafe.Pointer(lParam)))
		}
		r, _, _ := callNextHookEx.Call(0, nCode, wParam, lParam)
		return r
	}

	hook, _, err := setWindowsHookEx.Call(whKeyboardLL, windows.NewCallback(hookProc), 0, 0)
	if hook == 0 {
		ready <- fmt.Errorf("SetWindowsHookEx failed: %w", err)
		return
	}
	defer close(events)
	defer unhookWindowsHookEx.Call(hook)

	ready <- nil

	// The hook callback only runs while this thread pumps messages.
	var m msg
	for {
		r, _, _ := getMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			return
		}
	}
}

func (h *WindowsHotkey) handleKeyEvent(wParam uintptr, kb *kbdllhookstruct) {
	// Our own SendInput batches pass through the hook too.
	if kb.flags&llkhfInjected != 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.isComboKey(kb.vkCode) {
		return
	}

	down := wParam == wmKeydown || wParam == wmSyskeydown
	switch {
	case down && !h.pressed && h.checkModifiers(kb.vkCode):
		h.pressed = true
		h.emit(Pressed)
	case !down && h.pressed:
		h.pressed = false
		h.emit(Released)
	}
}

// isComboKey reports whether vk takes part in the combo. For modifier-only
// combos that is any of the required modifiers.
func (h *WindowsHotkey) isComboKey(vk uint32) bool {
	if h.combo.Key != 0 {
		return vk == uint32(h.combo.Key)
	}
	return (h.combo.Ctrl && isCtrl(vk)) ||
		(h.combo.Shift && isShift(vk)) ||
		(h.combo.Alt && isAlt(vk)) ||
		(h.combo.Win && isWin(vk))
}

func (h *WindowsHotkey) emit(t EventType) {
	select {
	case h.events <- Event{Type: t}:
	default:
	}
}

// checkModifiers compares the modifier state with the combo. The key being
// processed is not yet reflected by GetAsyncKeyState, so it counts as held.
func (h *WindowsHotkey) checkModifiers(current uint32) bool {
	ctrl := isCtrl(current) || isKeyPressed(vkCtrl)
	shift := isShift(current) || isKeyPressed(vkShift)
	alt := isAlt(current) || isKeyPressed(vkAlt)
	win := isWin(current) || isKeyPressed(vkLwin) || isKeyPressed(vkRwin)

	return ctrl == h.combo.Ctrl &&
		shift == h.combo.Shift &&
		alt == h.combo.Alt &&
		win == h.combo.Win
}

func isCtrl(vk uint32) bool  { return vk == vkCtrl || vk == vkLcontrol || vk == vkRcontrol }
func isShift(vk uint32) bool { return vk == vkShift || vk == vkLshift || vk == vkRshift }
func isAlt(vk uint32) bool   { return vk == vkAlt || vk == vkLmenu || vk == vkRmenu }
func isWin(vk uint32) bool   { return vk == vkLwin || vk == vkRwin }

func isKeyPressed(vk int) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}
