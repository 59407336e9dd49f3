// Package postprocess validates and normalizes chat text before it is typed.
package postprocess

import (
	"context"
	"log/slog"
)

// Processor normalizes text or rejects it with an error.
type Processor func(ctx context.Context, text string) (string, error)

// Pipeline applies processors in order. The first rejection discards the text.
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a pipeline from processors.
func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process returns the normalized text, or "" and the first rejection.
func (p *Pipeline) Process(ctx context.Context, text string) (string, error) {
	for stage, proc := range p.processors {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		next, err := proc(ctx, text)
		if err != nil {
			slog.Debug("Command rejected", "stage", stage, "text", text, "error", err)
			return "", err
		}
		text = next
	}
	return text, nil
}

// AddProcessor appends proc after the existing processors.
func (p *Pipeline) AddProcessor(proc Processor) {
	p.processors = append(p.processors, proc)
}
