package model

import (
	"fmt"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/tags"
)

// Span is a half-open character interval [Start, End) into the
// document text. Offsets index the UTF-8 encoded text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Token is a single token span with its typed annotations. A token is
// created once per raw pipeline token; annotations are attached while
// the document is built and not mutated afterwards.
type Token struct {
	Span
	Pos    *tags.PosTag
	Morpho *MorphoFeatures
}

// Sentence is a sentence span covering its first token's start to its
// last token's end.
type Sentence struct {
	Span
}

// Chunk is a contiguous run of same-tagged tokens carrying exactly one
// named-entity annotation. Chunks never cross sentence boundaries.
type Chunk struct {
	Span
	Tag *tags.NerTag
}

// MorphoFeatures holds morphological information attached to a token
// whose reported lemma differs from its surface text.
type MorphoFeatures struct {
	Lemma string
	Pos   *tags.PosTag
}

// AnalysedText is the consolidated analysis result for one document:
// ordered token, sentence and chunk spans over the same text. It
// exclusively owns its spans; tag objects are shared with the registry
// that resolved them.
type AnalysedText struct {
	text      string
	tokens    []*Token
	sentences []*Sentence
	chunks    []*Chunk
}

// NewAnalysedText creates an empty analysis over the given text.
func NewAnalysedText(text string) *AnalysedText {
	return &AnalysedText{text: text}
}

// Text returns the document text the spans index into.
func (at *AnalysedText) Text() string { return at.text }

// SpanText returns the text a span covers.
func (at *AnalysedText) SpanText(s Span) string { return at.text[s.Start:s.End] }

// Tokens returns the tokens in document order.
func (at *AnalysedText) Tokens() []*Token { return at.tokens }

// Sentences returns the sentences in document order.
func (at *AnalysedText) Sentences() []*Sentence { return at.sentences }

// Chunks returns the named-entity chunks in document order.
func (at *AnalysedText) Chunks() []*Chunk { return at.chunks }

// AddToken appends a token span, validating it against the document.
func (at *AnalysedText) AddToken(start, end int) (*Token, error) {
	if err := at.checkSpan(start, end); err != nil {
		return nil, err
	}
	t := &Token{Span: Span{Start: start, End: end}}
	at.tokens = append(at.tokens, t)
	return t, nil
}

// AddSentence appends a sentence span, validating it against the document.
func (at *AnalysedText) AddSentence(start, end int) (*Sentence, error) {
	if err := at.checkSpan(start, end); err != nil {
		return nil, err
	}
	s := &Sentence{Span: Span{Start: start, End: end}}
	at.sentences = append(at.sentences, s)
	return s, nil
}

// AddChunk appends a chunk span carrying a named-entity tag.
func (at *AnalysedText) AddChunk(start, end int, tag *tags.NerTag) (*Chunk, error) {
	if err := at.checkSpan(start, end); err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("chunk [%d,%d) without a NER tag: %w", start, end, internalerr.ErrInvalidInput)
	}
	c := &Chunk{Span: Span{Start: start, End: end}, Tag: tag}
	at.chunks = append(at.chunks, c)
	return c, nil
}

func (at *AnalysedText) checkSpan(start, end int) error {
	if start < 0 || start >= end || end > len(at.text) {
		return fmt.Errorf("span [%d,%d) outside document of length %d: %w",
			start, end, len(at.text), internalerr.ErrInvalidSpan)
	}
	return nil
}
