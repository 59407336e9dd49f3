package platform

import (
	"fmt"
	"strings"
)

// Key is a Windows virtual-key code. The same values are used on every
// platform so sequences can be built and tested anywhere.
type Key uint16

const (
	KeyTab     Key = 0x09
	KeyEnter   Key = 0x0D
	KeyControl Key = 0x11
	KeyAlt     Key = 0x12 // VK_MENU
	KeyEscape  Key = 0x1B
	KeyUp      Key = 0x26
	KeyA       Key = 0x41
	KeyV       Key = 0x56
)

var keyNames = map[Key]string{
	KeyTab:     "tab",
	KeyEnter:   "enter",
	KeyControl: "ctrl",
	KeyAlt:     "alt",
	KeyEscape:  "esc",
	KeyUp:      "up",
	KeyA:       "a",
	KeyV:       "v",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("vk(0x%02X)", uint16(k))
}

// Extended reports whether the key sits in the extended block (arrows etc.)
// and needs KEYEVENTF_EXTENDEDKEY when injected with a scan code.
func (k Key) Extended() bool {
	return k >= 0x21 && k <= 0x2E
}

// Phase is the press or release half of a key stroke.
type Phase int

const (
	Down Phase = iota
	Up
)

func (p Phase) String() string {
	if p == Up {
		return "up"
	}
	return "down"
}

// KeyEvent is one synthetic key transition.
type KeyEvent struct {
	Key   Key
	Phase Phase
}

func (e KeyEvent) String() string {
	return e.Key.String() + " " + e.Phase.String()
}

// Press returns the down/up pair for k.
func Press(k Key) []KeyEvent {
	return []KeyEvent{{Key: k, Phase: Down}, {Key: k, Phase: Up}}
}

// FormatEvents renders a batch as "enter down, enter up, ..." for logs.
func FormatEvents(events []KeyEvent) string {
	parts := make([]string, len(events))
	for i, e := range events {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// VKCode returns the Windows virtual key code for a key name
// Returns 0 for empty string (modifier-only hotkey)
func VKCode(key string) (int, error) {
	if key == "" {
		return 0, nil
	}

	codes := map[string]int{
		"a": 0x41, "b": 0x42, "c": 0x43, "d": 0x44, "e": 0x45,
		"f": 0x46, "g": 0x47, "h": 0x48, "i": 0x49, "j": 0x4A,
		"k": 0x4B, "l": 0x4C, "m": 0x4D, "n": 0x4E, "o": 0x4F,
		"p": 0x50, "q": 0x51, "r": 0x52, "s": 0x53, "t": 0x54,
		"u": 0x55, "v": 0x56, "w": 0x57, "x": 0x58, "y": 0x59, "z": 0x5A,
		"0": 0x30, "1": 0x31, "2": 0x32, "3": 0x33, "4": 0x34,
		"5": 0x35, "6": 0x36, "7": 0x37, "8": 0x38, "9": 0x39,
		"f1": 0x70, "f2": 0x71, "f3": 0x72, "f4": 0x73,
		"f5": 0x74, "f6": 0x75, "f7": 0x76, "f8": 0x77,
		"f9": 0x78, "f10": 0x79, "f11": 0x7A, "f12": 0x7B,
		"space": 0x20, "enter": 0x0D, "esc": 0x1B,
		"tab": 0x09, "backspace": 0x08,
		"home": 0x24, "end": 0x23, "insert": 0x2D, "pause": 0x13,
	}

	if code, ok := codes[key]; ok {
		return code, nil
	}

	return 0, fmt.Errorf("unknown key: %s", key)
}
