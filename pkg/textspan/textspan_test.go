package textspan

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/pipeline"
	"github.com/cognicore/textspan/pkg/textspan/tags"
)

// scriptedPipeline returns a fixed sentence stream, or an error.
type scriptedPipeline struct {
	sentences []pipeline.RawSentence
	err       error
}

func (s *scriptedPipeline) Annotate(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
	return s.sentences, s.err
}

func newAnalyzerWithTagSets() *Analyzer {
	registry := tags.NewRegistry(nil)
	registry.SetPosTagSet("en", tags.NewPosTagSet(
		&tags.PosTag{Raw: "NNP", Category: "proper-noun"},
		&tags.PosTag{Raw: "VBZ", Category: "verb"},
		&tags.PosTag{Raw: "JJ", Category: "adjective"},
		&tags.PosTag{Raw: ".", Category: "punctuation"},
	))
	registry.SetNerTagSet("en", tags.NewNerTagSet(
		&tags.NerTag{Raw: "LOCATION", Type: "place"},
	))
	return New(Options{Registry: registry})
}

func TestAnalyseEndToEnd(t *testing.T) {
	a := newAnalyzerWithTagSets()
	text := "Paris is nice."
	a.RegisterPipeline("en", &scriptedPipeline{sentences: []pipeline.RawSentence{{Tokens: []pipeline.RawToken{
		{Start: 0, End: 5, POS: "NNP", NER: "LOCATION"},
		{Start: 6, End: 8, POS: "VBZ", NER: "O"},
		{Start: 9, End: 13, POS: "JJ", NER: "O"},
		{Start: 13, End: 14, POS: ".", NER: "O"},
	}}}})

	at, err := a.Analyse(context.Background(), "en", text)
	if err != nil {
		t.Fatalf("Analyse failed: %v", err)
	}
	if len(at.Sentences()) != 1 || len(at.Tokens()) != 4 || len(at.Chunks()) != 1 {
		t.Errorf("got %d sentences, %d tokens, %d chunks; want 1, 4, 1",
			len(at.Sentences()), len(at.Tokens()), len(at.Chunks()))
	}
	if got := at.SpanText(at.Chunks()[0].Span); got != "Paris" {
		t.Errorf("chunk text = %q, want 'Paris'", got)
	}
}

func TestAnalyseUnsupportedLanguage(t *testing.T) {
	a := newAnalyzerWithTagSets()
	a.RegisterPipeline("en", &scriptedPipeline{})
	a.RegisterPipeline("de", &scriptedPipeline{})

	_, err := a.Analyse(context.Background(), "xx", "text")
	if !errors.Is(err, internalerr.ErrUnsupportedLanguage) {
		t.Fatalf("error %v, want ErrUnsupportedLanguage", err)
	}
	if !strings.Contains(err.Error(), `"xx"`) {
		t.Errorf("error %v should name the requested language", err)
	}
	if !strings.Contains(err.Error(), "de") || !strings.Contains(err.Error(), "en") {
		t.Errorf("error %v should list the supported languages", err)
	}
}

func TestAnalysePipelineFailure(t *testing.T) {
	a := newAnalyzerWithTagSets()
	cause := errors.New("annotator crashed")
	a.RegisterPipeline("en", &scriptedPipeline{err: cause})

	at, err := a.Analyse(context.Background(), "en", "text")
	if !errors.Is(err, internalerr.ErrPipelineFailure) {
		t.Fatalf("error %v, want ErrPipelineFailure", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error %v should preserve the original cause", err)
	}
	if !strings.Contains(err.Error(), `"en"`) {
		t.Errorf("error %v should name the language", err)
	}
	if at != nil {
		t.Error("no partial analysis may be returned on pipeline failure")
	}
}

func TestAnalyseEmptyLanguage(t *testing.T) {
	a := newAnalyzerWithTagSets()
	if _, err := a.Analyse(context.Background(), "", "text"); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("error %v, want ErrInvalidInput", err)
	}
}

func TestAnalyseLanguageCaseInsensitive(t *testing.T) {
	a := newAnalyzerWithTagSets()
	a.RegisterPipeline("EN", &scriptedPipeline{})

	if _, err := a.Analyse(context.Background(), "En", "text"); err != nil {
		t.Errorf("Analyse with mixed-case language failed: %v", err)
	}
}

func TestAnalyseEmptyStream(t *testing.T) {
	a := newAnalyzerWithTagSets()
	a.RegisterPipeline("en", &scriptedPipeline{})

	at, err := a.Analyse(context.Background(), "en", "text without sentences")
	if err != nil {
		t.Fatalf("Analyse failed: %v", err)
	}
	if len(at.Tokens()) != 0 || len(at.Sentences()) != 0 || len(at.Chunks()) != 0 {
		t.Error("zero sentences must yield an empty analysis, not an error")
	}
}

func TestAnalyseConcurrentDocumentsSameLanguage(t *testing.T) {
	// Ad-hoc tags synthesized under concurrent first-sight races must
	// still resolve to one object per raw string.
	a := newAnalyzerWithTagSets()
	a.RegisterPipeline("en", &scriptedPipeline{sentences: []pipeline.RawSentence{{Tokens: []pipeline.RawToken{
		{Start: 0, End: 4, POS: "ZZZ", NER: "O"},
	}}}})

	var wg sync.WaitGroup
	results := make([]*tags.PosTag, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			at, err := a.Analyse(context.Background(), "en", "word")
			if err != nil {
				t.Errorf("Analyse failed: %v", err)
				return
			}
			results[i] = at.Tokens()[0].Pos
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent analyses must share one ad-hoc tag object per raw string")
		}
	}
}
