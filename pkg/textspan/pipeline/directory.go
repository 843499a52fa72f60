package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
)

// Directory maps language codes to registered pipelines. Language
// codes are case-insensitive; all lookups normalize to lower case.
type Directory struct {
	mu        sync.RWMutex
	pipelines map[string]Pipeline
	supported []string
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{pipelines: make(map[string]Pipeline)}
}

// Register binds a pipeline to a language and returns the previously
// registered pipeline, or nil if the language is new. Replacing an
// existing binding does not recompute the supported-languages listing.
func (d *Directory) Register(language string, p Pipeline) (Pipeline, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil, fmt.Errorf("language must not be empty: %w", internalerr.ErrInvalidInput)
	}
	if p == nil {
		return nil, fmt.Errorf("pipeline for language %q must not be nil: %w", language, internalerr.ErrInvalidInput)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	old := d.pipelines[language]
	d.pipelines[language] = p
	if old == nil {
		supported := make([]string, 0, len(d.pipelines))
		for lang := range d.pipelines {
			supported = append(supported, lang)
		}
		sort.Strings(supported)
		d.supported = supported
	}
	return old, nil
}

// Lookup returns the pipeline registered for a language.
func (d *Directory) Lookup(language string) (Pipeline, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.pipelines[strings.ToLower(strings.TrimSpace(language))]
	return p, ok
}

// IsSupported reports whether a pipeline is registered for a language.
func (d *Directory) IsSupported(language string) bool {
	_, ok := d.Lookup(language)
	return ok
}

// Supported returns an alphabetically sorted listing of registered
// languages. The listing is intended for diagnostics and error
// messages; use IsSupported for support checks.
func (d *Directory) Supported() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.supported
}
