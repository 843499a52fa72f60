// Package render builds serializable views of an AnalysedText for
// downstream consumers. The analysis core imposes no wire format; this
// is the adjacent JSON rendering.
package render

import (
	"encoding/json"

	"github.com/cognicore/textspan/pkg/textspan/model"
)

// Document is the JSON view of one analysed document. Tokens are
// grouped under the sentence that contains them; chunks are listed at
// the document level with their covered text.
type Document struct {
	Language  string     `json:"language"`
	Text      string     `json:"text"`
	Sentences []Sentence `json:"sentences"`
	Chunks    []Chunk    `json:"chunks,omitempty"`
}

// Sentence is the JSON view of a sentence span
type Sentence struct {
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}

// Token is the JSON view of a token span
type Token struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Text     string `json:"text"`
	Pos      string `json:"pos,omitempty"`
	Category string `json:"category,omitempty"`
	Lemma    string `json:"lemma,omitempty"`
}

// Chunk is the JSON view of a named-entity chunk
type Chunk struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
	Tag   string `json:"tag"`
	Type  string `json:"type,omitempty"`
}

// FromAnalysedText builds the JSON view of an analysis.
func FromAnalysedText(language string, at *model.AnalysedText) Document {
	doc := Document{
		Language:  language,
		Text:      at.Text(),
		Sentences: []Sentence{},
	}

	tokens := at.Tokens()
	for _, s := range at.Sentences() {
		sentence := Sentence{
			Start:  s.Start,
			End:    s.End,
			Text:   at.SpanText(s.Span),
			Tokens: []Token{},
		}
		for _, t := range tokens {
			if t.Start < s.Start || t.End > s.End {
				continue
			}
			token := Token{
				Start: t.Start,
				End:   t.End,
				Text:  at.SpanText(t.Span),
			}
			if t.Pos != nil {
				token.Pos = t.Pos.Raw
				token.Category = t.Pos.Category
			}
			if t.Morpho != nil {
				token.Lemma = t.Morpho.Lemma
			}
			sentence.Tokens = append(sentence.Tokens, token)
		}
		doc.Sentences = append(doc.Sentences, sentence)
	}

	for _, c := range at.Chunks() {
		doc.Chunks = append(doc.Chunks, Chunk{
			Start: c.Start,
			End:   c.End,
			Text:  at.SpanText(c.Span),
			Tag:   c.Tag.Raw,
			Type:  c.Tag.Type,
		})
	}
	return doc
}

// JSON marshals the document with indentation.
func (d Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
