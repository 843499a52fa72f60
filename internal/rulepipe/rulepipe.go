// Package rulepipe is a small rule-based annotation pipeline: sentence
// splitting, tokenization, gazetteer named-entity tagging and lemma
// lookup. It exists so the binary and integration tests have a real
// pipeline to run; production setups register their own.
package rulepipe

import (
	"context"
	"strings"
	"unicode"

	"github.com/cognicore/textspan/pkg/textspan/pipeline"
)

// Config configures a rule pipeline
type Config struct {
	// Entities maps lowercase surface phrases to raw NER tags,
	// e.g. "new york" -> "LOCATION". Multi-word phrases match runs
	// of consecutive tokens.
	Entities map[string]string
	// Lemmas maps lowercase surface forms to lemmas, e.g. "cities"
	// -> "city".
	Lemmas map[string]string
}

// Pipeline implements pipeline.Pipeline with deterministic rules.
type Pipeline struct {
	entities map[string][]gazetteerEntry // first word -> candidate phrases
	lemmas   map[string]string
}

type gazetteerEntry struct {
	words []string
	tag   string
}

// New creates a rule pipeline from the given config.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		entities: make(map[string][]gazetteerEntry),
		lemmas:   make(map[string]string, len(cfg.Lemmas)),
	}
	for phrase, tag := range cfg.Entities {
		words := strings.Fields(strings.ToLower(phrase))
		if len(words) == 0 || tag == "" {
			continue
		}
		first := words[0]
		p.entities[first] = append(p.entities[first], gazetteerEntry{words: words, tag: tag})
	}
	for surface, lemma := range cfg.Lemmas {
		p.lemmas[strings.ToLower(surface)] = lemma
	}
	return p
}

// Annotate splits the text into sentences and tokens and attaches POS,
// NER and lemma annotations.
func (p *Pipeline) Annotate(ctx context.Context, text string) ([]pipeline.RawSentence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sentences []pipeline.RawSentence
	for _, sentence := range splitSentences(text) {
		if len(sentence) == 0 {
			continue
		}
		tokens := make([]pipeline.RawToken, len(sentence))
		for i, span := range sentence {
			word := text[span.start:span.end]
			tokens[i] = pipeline.RawToken{
				Start: span.start,
				End:   span.end,
				POS:   guessPOS(word),
				NER:   "O",
				Lemma: p.lemmas[strings.ToLower(word)],
			}
		}
		p.tagEntities(text, sentence, tokens)
		sentences = append(sentences, pipeline.RawSentence{Tokens: tokens})
	}
	return sentences, nil
}

// tagEntities assigns a gazetteer tag to every token of a matched
// phrase, preferring the longest match at each position.
func (p *Pipeline) tagEntities(text string, spans []tokenSpan, tokens []pipeline.RawToken) {
	for i := 0; i < len(spans); {
		word := strings.ToLower(text[spans[i].start:spans[i].end])
		best := 0
		bestTag := ""
		for _, entry := range p.entities[word] {
			if len(entry.words) <= best || i+len(entry.words) > len(spans) {
				continue
			}
			matched := true
			for j := 1; j < len(entry.words); j++ {
				next := strings.ToLower(text[spans[i+j].start:spans[i+j].end])
				if next != entry.words[j] {
					matched = false
					break
				}
			}
			if matched {
				best = len(entry.words)
				bestTag = entry.tag
			}
		}
		if best == 0 {
			i++
			continue
		}
		for j := 0; j < best; j++ {
			tokens[i+j].NER = bestTag
		}
		i += best
	}
}

type tokenSpan struct {
	start int
	end   int
}

// splitSentences tokenizes the text into byte-offset spans grouped by
// sentence. A sentence ends after ".", "!" or "?".
func splitSentences(text string) [][]tokenSpan {
	var sentences [][]tokenSpan
	var current []tokenSpan

	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, current)
			current = nil
		}
	}

	wordStart := -1
	for i, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if wordStart < 0 {
				wordStart = i
			}
		case unicode.IsSpace(r):
			if wordStart >= 0 {
				current = append(current, tokenSpan{wordStart, i})
				wordStart = -1
			}
		default:
			if wordStart >= 0 {
				current = append(current, tokenSpan{wordStart, i})
				wordStart = -1
			}
			end := i + len(string(r))
			current = append(current, tokenSpan{i, end})
			if r == '.' || r == '!' || r == '?' {
				flush()
			}
		}
	}
	if wordStart >= 0 {
		current = append(current, tokenSpan{wordStart, len(text)})
	}
	flush()
	return sentences
}

// Closed-class words get fixed tags; everything else falls back to
// shape and suffix heuristics.
var closedClass = map[string]string{
	"is": "VBZ", "are": "VBP", "was": "VBD", "were": "VBD", "be": "VB",
	"the": "DT", "a": "DT", "an": "DT",
	"of": "IN", "in": "IN", "on": "IN", "at": "IN", "to": "TO",
	"and": "CC", "or": "CC", "but": "CC",
	"it": "PRP", "he": "PRP", "she": "PRP", "they": "PRP",
}

func guessPOS(word string) string {
	if tag, ok := closedClass[strings.ToLower(word)]; ok {
		return tag
	}
	runes := []rune(word)
	first := runes[0]
	switch {
	case unicode.IsPunct(first) || unicode.IsSymbol(first):
		return word
	case unicode.IsDigit(first):
		return "CD"
	case unicode.IsUpper(first):
		return "NNP"
	case strings.HasSuffix(word, "ly"):
		return "RB"
	case strings.HasSuffix(word, "ing"):
		return "VBG"
	case strings.HasSuffix(word, "ed"):
		return "VBD"
	default:
		return "NN"
	}
}
