package postprocess

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCommandPipeline(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain command", "/reloaditemfilter", "/reloaditemfilter", false},
		{"trimmed", "  /hideout \t", "/hideout", false},
		{"chat text", "@friend wts chaos", "@friend wts chaos", false},
		{"blank", "   ", "", true},
		{"embedded newline", "/hideout\n/kick me", "", true},
		{"embedded nul", "/hideout\x00", "", true},
		{"at limit", strings.Repeat("a", 16), strings.Repeat("a", 16), false},
		{"over limit", strings.Repeat("a", 17), "", true},
	}

	p := CommandPipeline(16)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Process(context.Background(), tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCommand) {
					t.Fatalf("err = %v, want ErrInvalidCommand", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPipeline_AddProcessorRunsInOrder(t *testing.T) {
	p := NewPipeline(TrimProcessor())
	p.AddProcessor(func(ctx context.Context, text string) (string, error) {
		return "/" + text, nil
	})

	got, err := p.Process(context.Background(), " hideout ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/hideout" {
		t.Errorf("got %q, want /hideout", got)
	}
}

func TestPipeline_RejectionDiscardsText(t *testing.T) {
	p := CommandPipeline(0)
	got, err := p.Process(context.Background(), " /a\tb ")
	if !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("err = %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty on rejection", got)
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := CommandPipeline(16).Process(ctx, "/hideout"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
