// Package gate serializes access to annotation pipelines. A pipeline
// may be non-reentrant, so invocations sharing a handle must never
// overlap, even when multiple documents are submitted at once.
package gate

import (
	"context"
	"fmt"
	"sync"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/pipeline"
)

// Gate hands pipeline invocations to a single worker per pipeline
// handle and blocks the caller until the worker returns or the
// caller's context is done. Abandoned invocations still run to
// completion inside their slot; their result is discarded.
type Gate struct {
	mu    sync.Mutex
	slots map[pipeline.Pipeline]chan struct{}
}

// New creates an empty gate.
func New() *Gate {
	return &Gate{slots: make(map[pipeline.Pipeline]chan struct{})}
}

// Run invokes the pipeline against the text, serialized against all
// other invocations of the same handle. A pipeline fault is wrapped
// with the language and the original cause; a cancelled wait surfaces
// as a distinct cancellation error so callers can choose to retry.
func (g *Gate) Run(ctx context.Context, language string, p pipeline.Pipeline, text string) ([]pipeline.RawSentence, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline for language %q must not be nil: %w", language, internalerr.ErrInvalidInput)
	}
	slot := g.slot(p)

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("annotating %q text: %w: %w", language, internalerr.ErrCancelled, ctx.Err())
	}

	type result struct {
		sentences []pipeline.RawSentence
		err       error
	}
	// Buffered so an abandoned worker can deliver and release its slot.
	done := make(chan result, 1)
	go func() {
		defer func() { <-slot }()
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("pipeline panic: %v", r)}
			}
		}()
		sentences, err := p.Annotate(ctx, text)
		done <- result{sentences: sentences, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("annotating %q text: %w: %w", language, internalerr.ErrPipelineFailure, res.err)
		}
		return res.sentences, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("annotating %q text: %w: %w", language, internalerr.ErrCancelled, ctx.Err())
	}
}

func (g *Gate) slot(p pipeline.Pipeline) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[p]
	if !ok {
		s = make(chan struct{}, 1)
		g.slots[p] = s
	}
	return s
}
