package platform

import (
	"bytes"
	"errors"
	"testing"
)

// fakeClipboard models the OS clipboard: a single owner lock plus data.
type fakeClipboard struct {
	open    bool
	data    map[Format][]byte
	openErr error
	setErr  error
	opens   int
	closes  int
}

func newFakeClipboard() *fakeClipboard {
	return &fakeClipboard{data: map[Format][]byte{FormatText: []byte("previous\x00")}}
}

func (c *fakeClipboard) Open() error {
	if c.openErr != nil {
		return c.openErr
	}
	if c.open {
		return errors.New("already owned")
	}
	c.open = true
	c.opens++
	return nil
}

func (c *fakeClipboard) Empty() error {
	c.data = map[Format][]byte{}
	return nil
}

func (c *fakeClipboard) SetData(format Format, payload []byte) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[format] = append([]byte(nil), payload...)
	return nil
}

func (c *fakeClipboard) Close() error {
	c.open = false
	c.closes++
	return nil
}

func TestWriteText_InstallsNulTerminatedText(t *testing.T) {
	tests := []string{"/reloaditemfilter", "", "hello world", "@friend hi"}

	for _, text := range tests {
		cb := newFakeClipboard()
		if err := WriteText(cb, text); err != nil {
			t.Fatalf("WriteText(%q): %v", text, err)
		}

		want := append([]byte(text), 0)
		if got := cb.data[FormatText]; !bytes.Equal(got, want) {
			t.Errorf("clipboard = %q, want %q", got, want)
		}
		if cb.open {
			t.Errorf("clipboard still owned after WriteText(%q)", text)
		}
	}
}

func TestWriteText_OpenFailureLeavesClipboardUntouched(t *testing.T) {
	cb := newFakeClipboard()
	cb.openErr = errors.New("busy")

	err := WriteText(cb, "/reloaditemfilter")
	if !errors.Is(err, ErrClipboardUnavailable) {
		t.Fatalf("err = %v, want ErrClipboardUnavailable", err)
	}
	if got := string(cb.data[FormatText]); got != "previous\x00" {
		t.Errorf("clipboard changed to %q", got)
	}
	if cb.closes != 0 {
		t.Errorf("Close called %d times without ownership", cb.closes)
	}
}

func TestWriteText_AllocationFailureLeavesClipboardEmpty(t *testing.T) {
	cb := newFakeClipboard()
	cb.setErr = ErrAllocationFailed

	err := WriteText(cb, "/reloaditemfilter")
	if !errors.Is(err, ErrAllocationFailed) {
		t.Fatalf("err = %v, want ErrAllocationFailed", err)
	}
	if len(cb.data) != 0 {
		t.Errorf("clipboard not empty after allocation failure: %v", cb.data)
	}
	if cb.open {
		t.Fatal("clipboard still owned after allocation failure")
	}

	// Another writer can take ownership right away.
	cb.setErr = nil
	if err := WriteText(cb, "next"); err != nil {
		t.Fatalf("second WriteText: %v", err)
	}
	if cb.opens != 2 || cb.closes != 2 {
		t.Errorf("opens=%d closes=%d, want 2/2", cb.opens, cb.closes)
	}
}
