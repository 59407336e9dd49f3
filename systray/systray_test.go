package systray

import (
	"errors"
	"testing"
	"time"
)

func TestReload_InvokesCallback(t *testing.T) {
	called := make(chan struct{}, 1)
	m := NewSystrayManager(Options{OnReload: func() { called <- struct{}{} }})

	m.reload()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("OnReload not called")
	}
}

func TestReload_NilCallback(t *testing.T) {
	m := NewSystrayManager(Options{})
	m.reload()
}

func TestOpenHistory(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		openErr error
		want    []string
	}{
		{"opens url", "http://127.0.0.1:47821/api/history", nil, []string{"http://127.0.0.1:47821/api/history"}},
		{"open error is logged", "http://127.0.0.1:1/api/history", errors.New("no browser"), []string{"http://127.0.0.1:1/api/history"}},
		{"disabled", "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSystrayManager(Options{HistoryURL: tt.url})
			var opened []string
			m.openURL = func(u string) error {
				opened = append(opened, u)
				return tt.openErr
			}

			m.openHistory()

			if len(opened) != len(tt.want) || (len(opened) == 1 && opened[0] != tt.want[0]) {
				t.Errorf("opened = %q, want %q", opened, tt.want)
			}
		})
	}
}
