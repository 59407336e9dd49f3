package platform

import "testing"

func TestVKCode(t *testing.T) {
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"r", 0x52, false},
		{"f5", 0x74, false},
		{"enter", 0x0D, false},
		{"numpad9", 0, true},
	}

	for _, tt := range tests {
		got, err := VKCode(tt.key)
		if (err != nil) != tt.wantErr {
			t.Fatalf("VKCode(%q) err = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("VKCode(%q) = 0x%X, want 0x%X", tt.key, got, tt.want)
		}
	}
}

func TestKeyExtended(t *testing.T) {
	if !KeyUp.Extended() {
		t.Error("up arrow should be an extended key")
	}
	for _, k := range []Key{KeyEnter, KeyControl, KeyA, KeyV, KeyEscape, KeyTab, KeyAlt} {
		if k.Extended() {
			t.Errorf("%s should not be an extended key", k)
		}
	}
}

func TestFormatEvents(t *testing.T) {
	events := append(Press(KeyEnter), KeyEvent{Key: KeyControl, Phase: Down})
	want := "enter down, enter up, ctrl down"
	if got := FormatEvents(events); got != want {
		t.Errorf("FormatEvents = %q, want %q", got, want)
	}
	if got := Key(0x7B).String(); got != "vk(0x7B)" {
		t.Errorf("unnamed key = %q", got)
	}
}
