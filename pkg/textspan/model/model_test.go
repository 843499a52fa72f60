package model

import (
	"errors"
	"testing"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/tags"
)

func TestAddTokenValidSpan(t *testing.T) {
	at := NewAnalysedText("hello world")

	tok, err := at.AddToken(0, 5)
	if err != nil {
		t.Fatalf("AddToken failed: %v", err)
	}
	if at.SpanText(tok.Span) != "hello" {
		t.Errorf("token text = %q, want 'hello'", at.SpanText(tok.Span))
	}
	if tok.Len() != 5 {
		t.Errorf("token length = %d, want 5", tok.Len())
	}
}

func TestSpanValidation(t *testing.T) {
	at := NewAnalysedText("hello")

	cases := []struct {
		name       string
		start, end int
	}{
		{"negative start", -1, 3},
		{"empty span", 2, 2},
		{"inverted span", 4, 2},
		{"past end", 0, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := at.AddToken(tc.start, tc.end); !errors.Is(err, internalerr.ErrInvalidSpan) {
				t.Errorf("AddToken(%d, %d): error %v, want ErrInvalidSpan", tc.start, tc.end, err)
			}
			if _, err := at.AddSentence(tc.start, tc.end); !errors.Is(err, internalerr.ErrInvalidSpan) {
				t.Errorf("AddSentence(%d, %d): error %v, want ErrInvalidSpan", tc.start, tc.end, err)
			}
			tag := &tags.NerTag{Raw: "LOCATION"}
			if _, err := at.AddChunk(tc.start, tc.end, tag); !errors.Is(err, internalerr.ErrInvalidSpan) {
				t.Errorf("AddChunk(%d, %d): error %v, want ErrInvalidSpan", tc.start, tc.end, err)
			}
		})
	}
}

func TestAddChunkRequiresTag(t *testing.T) {
	at := NewAnalysedText("hello")
	if _, err := at.AddChunk(0, 5, nil); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("AddChunk without tag: error %v, want ErrInvalidInput", err)
	}
}

func TestSpansKeepDocumentOrder(t *testing.T) {
	at := NewAnalysedText("one two three")

	at.AddToken(0, 3)
	at.AddToken(4, 7)
	at.AddToken(8, 13)

	tokens := at.Tokens()
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	for i := 1; i < len(tokens); i++ {
		if tokens[i].Start < tokens[i-1].End {
			t.Errorf("tokens %d and %d overlap", i-1, i)
		}
	}
}

func TestEmptyAnalysis(t *testing.T) {
	at := NewAnalysedText("")
	if len(at.Tokens()) != 0 || len(at.Sentences()) != 0 || len(at.Chunks()) != 0 {
		t.Error("a fresh analysis must be empty")
	}
	if at.Text() != "" {
		t.Error("text should round-trip")
	}
}
