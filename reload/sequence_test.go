package reload

import (
	"reflect"
	"testing"

	"markestedt/reloadbridge/platform"
)

func TestChatSequence_ExactOrder(t *testing.T) {
	want := []platform.KeyEvent{
		down(platform.KeyEnter), up(platform.KeyEnter),
		down(platform.KeyControl),
		down(platform.KeyA), up(platform.KeyA),
		down(platform.KeyV), up(platform.KeyV),
		up(platform.KeyControl),
		down(platform.KeyEnter), up(platform.KeyEnter),
		down(platform.KeyEnter), up(platform.KeyEnter),
		down(platform.KeyUp), up(platform.KeyUp),
		down(platform.KeyUp), up(platform.KeyUp),
		down(platform.KeyEscape), up(platform.KeyEscape),
	}

	got := ChatSequence(false)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sequence mismatch\n got: %s\nwant: %s", platform.FormatEvents(got), platform.FormatEvents(want))
	}

	withFocus := ChatSequence(true)
	tail := []platform.KeyEvent{
		down(platform.KeyAlt), down(platform.KeyTab), up(platform.KeyTab), up(platform.KeyAlt),
	}
	if !reflect.DeepEqual(withFocus, append(want, tail...)) {
		t.Fatalf("focus-cycle sequence mismatch: %s", platform.FormatEvents(withFocus))
	}
}

func TestChatSequence_Counts(t *testing.T) {
	tests := []struct {
		restore bool
		want    int
	}{
		{false, 18},
		{true, 22},
	}
	for _, tt := range tests {
		if got := len(ChatSequence(tt.restore)); got != tt.want {
			t.Errorf("ChatSequence(%v) has %d events, want %d", tt.restore, got, tt.want)
		}
	}
}

func TestChatSequence_NoStuckKeys(t *testing.T) {
	for _, restore := range []bool{false, true} {
		held := map[platform.Key]bool{}
		for i, e := range ChatSequence(restore) {
			switch e.Phase {
			case platform.Down:
				if held[e.Key] {
					t.Fatalf("restore=%v: %s pressed twice without release at %d", restore, e.Key, i)
				}
				held[e.Key] = true
			case platform.Up:
				if !held[e.Key] {
					t.Fatalf("restore=%v: %s released without press at %d", restore, e.Key, i)
				}
				held[e.Key] = false
			}
		}
		for k, down := range held {
			if down {
				t.Errorf("restore=%v: %s still held at end of sequence", restore, k)
			}
		}
	}
}

func TestChatSequence_ControlScopesSelectAndPaste(t *testing.T) {
	seq := ChatSequence(false)

	index := func(e platform.KeyEvent) int {
		for i, x := range seq {
			if x == e {
				return i
			}
		}
		t.Fatalf("event %s missing", e)
		return -1
	}

	ctrlDown := index(down(platform.KeyControl))
	ctrlUp := index(up(platform.KeyControl))
	for _, e := range []platform.KeyEvent{
		down(platform.KeyA), up(platform.KeyA), down(platform.KeyV), up(platform.KeyV),
	} {
		i := index(e)
		if i < ctrlDown || i > ctrlUp {
			t.Errorf("%s at %d outside ctrl scope [%d, %d]", e, i, ctrlDown, ctrlUp)
		}
	}
}

func TestChatSequence_ReturnsFreshSlice(t *testing.T) {
	a := ChatSequence(false)
	a[0] = up(platform.KeyTab)
	if b := ChatSequence(false); b[0] != down(platform.KeyEnter) {
		t.Fatal("ChatSequence shares state between calls")
	}
}
