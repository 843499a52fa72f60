// Package pipeline defines the contract between the analysis core and
// external, language-specific annotation pipelines, plus the directory
// that tracks which languages have a pipeline registered.
package pipeline

import "context"

// RawToken is one token as reported by an annotation pipeline: a
// character span into the document plus the raw annotation strings the
// annotator emitted. Empty strings mean the annotation was not
// reported; a NER value of "O" means the annotator explicitly reported
// no entity.
type RawToken struct {
	Start int
	End   int
	POS   string
	NER   string
	Lemma string
}

// RawSentence is one sentence unit with its tokens in order.
type RawSentence struct {
	Tokens []RawToken
}

// Pipeline is an opaque annotation engine for one language. The core
// treats it as a black box that turns text into a per-sentence token
// stream. Implementations are not required to be reentrant; the
// execution gate guarantees a pipeline is never invoked concurrently
// with itself.
type Pipeline interface {
	Annotate(ctx context.Context, text string) ([]RawSentence, error)
}
