package postprocess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidCommand wraps every rejection made by the command processors.
var ErrInvalidCommand = errors.New("invalid command")

// TrimProcessor strips surrounding whitespace.
func TrimProcessor() Processor {
	return func(ctx context.Context, text string) (string, error) {
		return strings.TrimSpace(text), nil
	}
}

// NonEmptyProcessor rejects blank commands; pasting nothing would just
// re-send whatever the chat box already held.
func NonEmptyProcessor() Processor {
	return func(ctx context.Context, text string) (string, error) {
		if text == "" {
			return text, fmt.Errorf("%w: empty", ErrInvalidCommand)
		}
		return text, nil
	}
}

// SingleLineProcessor rejects control characters. A newline would submit the
// chat line early and a NUL would cut the clipboard payload short.
func SingleLineProcessor() Processor {
	return func(ctx context.Context, text string) (string, error) {
		for i, r := range text {
			if unicode.IsControl(r) {
				return text, fmt.Errorf("%w: control character %U at offset %d", ErrInvalidCommand, r, i)
			}
		}
		return text, nil
	}
}

// MaxLengthProcessor rejects commands longer than max bytes.
func MaxLengthProcessor(max int) Processor {
	return func(ctx context.Context, text string) (string, error) {
		if max > 0 && len(text) > max {
			return text, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInvalidCommand, len(text), max)
		}
		return text, nil
	}
}

// CommandPipeline is the standard validation applied to chat text before it
// reaches the clipboard.
func CommandPipeline(maxLen int) *Pipeline {
	return NewPipeline(
		TrimProcessor(),
		NonEmptyProcessor(),
		SingleLineProcessor(),
		MaxLengthProcessor(maxLen),
	)
}
