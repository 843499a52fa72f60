// Package textspan consolidates the per-token output of external
// annotation pipelines into a span-indexed text-analysis structure:
// sentences, tokens and named-entity chunks carrying typed tags drawn
// from a per-language tag registry.
package textspan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/textspan/pkg/textspan/align"
	"github.com/cognicore/textspan/pkg/textspan/gate"
	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/model"
	"github.com/cognicore/textspan/pkg/textspan/pipeline"
	"github.com/cognicore/textspan/pkg/textspan/tags"
)

// Analyzer ties the pipeline directory, execution gate, tag registry
// and alignment engine together. One Analyzer serves all languages and
// may be used from concurrent goroutines.
type Analyzer struct {
	directory *pipeline.Directory
	gate      *gate.Gate
	registry  *tags.Registry
	engine    *align.Engine
	logger    *slog.Logger
}

// Options configures an Analyzer
type Options struct {
	// Registry supplies the canonical per-language tag sets. A nil
	// registry starts empty; every tag then resolves ad-hoc and no
	// NER chunks are produced.
	Registry *tags.Registry
	Logger   *slog.Logger
}

// New creates an Analyzer with the given dependencies
func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = tags.NewRegistry(logger)
	}
	return &Analyzer{
		directory: pipeline.NewDirectory(),
		gate:      gate.New(),
		registry:  registry,
		engine:    align.New(registry, logger),
		logger:    logger,
	}
}

// Registry returns the tag registry shared by all analyses.
func (a *Analyzer) Registry() *tags.Registry { return a.registry }

// RegisterPipeline binds an annotation pipeline to a language and
// returns the previously registered pipeline, or nil if the language
// is new.
func (a *Analyzer) RegisterPipeline(language string, p pipeline.Pipeline) (pipeline.Pipeline, error) {
	return a.directory.Register(language, p)
}

// IsSupported reports whether a pipeline is registered for a language.
func (a *Analyzer) IsSupported(language string) bool {
	return a.directory.IsSupported(language)
}

// Supported returns a sorted listing of supported languages for
// diagnostics.
func (a *Analyzer) Supported() []string {
	return a.directory.Supported()
}

// Analyse runs the registered pipeline for a language against the text
// and aligns its raw token stream into an AnalysedText. Text with zero
// sentences yields an empty analysis, not an error.
func (a *Analyzer) Analyse(ctx context.Context, language, text string) (*model.AnalysedText, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil, fmt.Errorf("language must not be empty: %w", internalerr.ErrInvalidInput)
	}

	p, ok := a.directory.Lookup(language)
	if !ok {
		return nil, fmt.Errorf("language %q is not supported (supported: %v): %w",
			language, a.directory.Supported(), internalerr.ErrUnsupportedLanguage)
	}

	sentences, err := a.gate.Run(ctx, language, p, text)
	if err != nil {
		return nil, err
	}
	return a.engine.Align(language, text, sentences)
}
