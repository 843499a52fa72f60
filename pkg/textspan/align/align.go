// Package align walks the linear per-token annotation stream of one
// document and reconstructs the higher-level span structure: tokens,
// sentences and named-entity chunks.
package align

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/textspan/pkg/textspan/model"
	"github.com/cognicore/textspan/pkg/textspan/pipeline"
	"github.com/cognicore/textspan/pkg/textspan/tags"
)

// Engine merges a raw sentence stream into an AnalysedText, consulting
// the tag registry for every raw tag. The engine is purely sequential;
// one Align call processes one document.
type Engine struct {
	registry *tags.Registry
	logger   *slog.Logger
}

// New creates an engine backed by the given registry. A nil logger
// falls back to slog.Default().
func New(registry *tags.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: registry, logger: logger}
}

// Align builds the consolidated analysis for one document. Malformed
// token offsets abort the document; no partial result is returned.
//
// NER chunking tracks a run of consecutive same-tagged tokens per
// sentence. A token whose resolved tag differs from the open run's tag
// closes that run and, if its own tag is present, opens a new one in
// the same step. Sentence end closes any open run, so chunks never
// cross sentence boundaries.
func (e *Engine) Align(language, text string, sentences []pipeline.RawSentence) (*model.AnalysedText, error) {
	language = strings.ToLower(language)
	at := model.NewAnalysedText(text)

	for _, sentence := range sentences {
		// An empty sentence unit contributes no spans.
		if len(sentence.Tokens) == 0 {
			continue
		}

		sentStart, sentEnd := -1, -1
		var runTag *tags.NerTag
		var runStart, runEnd int

		for _, raw := range sentence.Tokens {
			token, err := at.AddToken(raw.Start, raw.End)
			if err != nil {
				return nil, fmt.Errorf("aligning %q token stream: %w", language, err)
			}
			if sentStart < 0 {
				sentStart = token.Start
			}
			sentEnd = token.End

			var posTag *tags.PosTag
			if raw.POS != "" {
				posTag = e.registry.ResolvePos(language, raw.POS)
				token.Pos = posTag
			}
			e.logger.Debug("token", "span", at.SpanText(token.Span), "pos", raw.POS, "ner", raw.NER)

			actTag := e.registry.ResolveNer(language, raw.NER)
			if runTag != nil && runTag != actTag {
				if _, err := at.AddChunk(runStart, runEnd, runTag); err != nil {
					return nil, fmt.Errorf("aligning %q token stream: %w", language, err)
				}
				runTag = nil
			}
			if actTag != nil {
				if runTag == nil {
					runStart = token.Start
				}
				runTag = actTag
				runEnd = token.End
			}

			if raw.Lemma != "" && raw.Lemma != at.SpanText(token.Span) {
				token.Morpho = &model.MorphoFeatures{Lemma: raw.Lemma, Pos: posTag}
			}
		}

		if _, err := at.AddSentence(sentStart, sentEnd); err != nil {
			return nil, fmt.Errorf("aligning %q token stream: %w", language, err)
		}
		// A run still open at sentence end is closed here.
		if runTag != nil {
			if _, err := at.AddChunk(runStart, runEnd, runTag); err != nil {
				return nil, fmt.Errorf("aligning %q token stream: %w", language, err)
			}
		}
	}

	return at, nil
}
