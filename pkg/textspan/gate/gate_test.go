package gate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/pipeline"
)

// fakePipeline implements pipeline.Pipeline for tests.
type fakePipeline struct {
	annotate func(ctx context.Context, text string) ([]pipeline.RawSentence, error)

	inFlight      atomic.Int32
	maxConcurrent atomic.Int32
}

func (f *fakePipeline) Annotate(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		max := f.maxConcurrent.Load()
		if n <= max || f.maxConcurrent.CompareAndSwap(max, n) {
			break
		}
	}
	if f.annotate != nil {
		return f.annotate(ctx, text)
	}
	return nil, nil
}

func TestRunSuccess(t *testing.T) {
	want := []pipeline.RawSentence{{Tokens: []pipeline.RawToken{{Start: 0, End: 4}}}}
	p := &fakePipeline{annotate: func(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
		return want, nil
	}}

	got, err := New().Run(context.Background(), "en", p, "word")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(got) != 1 || len(got[0].Tokens) != 1 {
		t.Errorf("Run returned %+v, want the pipeline's sentences", got)
	}
}

func TestRunWrapsPipelineFailure(t *testing.T) {
	cause := errors.New("model file corrupt")
	p := &fakePipeline{annotate: func(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
		return nil, cause
	}}

	_, err := New().Run(context.Background(), "en", p, "word")
	if err == nil {
		t.Fatal("Run should fail when the pipeline fails")
	}
	if !errors.Is(err, internalerr.ErrPipelineFailure) {
		t.Errorf("error %v should match ErrPipelineFailure", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error %v should preserve the original cause", err)
	}
	if !strings.Contains(err.Error(), `"en"`) {
		t.Errorf("error %v should name the language", err)
	}
}

func TestRunWrapsPipelinePanic(t *testing.T) {
	p := &fakePipeline{annotate: func(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
		panic("boom")
	}}

	_, err := New().Run(context.Background(), "en", p, "word")
	if !errors.Is(err, internalerr.ErrPipelineFailure) {
		t.Errorf("error %v should match ErrPipelineFailure", err)
	}
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %v should carry the panic value", err)
	}
}

func TestRunCancellationIsDistinct(t *testing.T) {
	release := make(chan struct{})
	p := &fakePipeline{annotate: func(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
		<-release
		return nil, nil
	}}
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := New().Run(ctx, "en", p, "word")
	if !errors.Is(err, internalerr.ErrCancelled) {
		t.Errorf("error %v should match ErrCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v should preserve the context error", err)
	}
	if errors.Is(err, internalerr.ErrPipelineFailure) {
		t.Error("cancellation must be distinguishable from pipeline failure")
	}
}

func TestRunSerializesPerPipeline(t *testing.T) {
	p := &fakePipeline{annotate: func(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
		time.Sleep(time.Millisecond)
		return nil, nil
	}}
	g := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Run(context.Background(), "en", p, "word"); err != nil {
				t.Errorf("Run failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if max := p.maxConcurrent.Load(); max > 1 {
		t.Errorf("pipeline entered %d times concurrently, want at most 1", max)
	}
}

func TestRunDistinctPipelinesOverlap(t *testing.T) {
	// Serialization is per handle: two different pipelines may run at
	// the same time.
	var running atomic.Int32
	overlapped := make(chan struct{}, 1)

	block := make(chan struct{})
	annotate := func(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
		if running.Add(1) == 2 {
			select {
			case overlapped <- struct{}{}:
			default:
			}
			close(block)
		} else {
			select {
			case <-block:
			case <-time.After(time.Second):
			}
		}
		defer running.Add(-1)
		return nil, nil
	}
	p1 := &fakePipeline{annotate: annotate}
	p2 := &fakePipeline{annotate: annotate}
	g := New()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); g.Run(context.Background(), "en", p1, "a") }()
	go func() { defer wg.Done(); g.Run(context.Background(), "de", p2, "b") }()
	wg.Wait()

	select {
	case <-overlapped:
	default:
		t.Error("distinct pipeline handles should be allowed to overlap")
	}
}

func TestRunNilPipeline(t *testing.T) {
	_, err := New().Run(context.Background(), "en", nil, "word")
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("error %v should match ErrInvalidInput", err)
	}
}
