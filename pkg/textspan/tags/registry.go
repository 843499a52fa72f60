package tags

import (
	"log/slog"
	"strings"
	"sync"
)

// NoEntity is the sentinel raw NER value annotators emit for tokens
// that belong to no named entity.
const NoEntity = "O"

// Registry maps raw tag strings to canonical tag objects per language.
// Lookups consult the language's canonical tag set first, then the
// language's ad-hoc map; a raw string seen for the first time gets an
// ad-hoc tag synthesized and cached, so resolving the same raw string
// twice in the same language always returns the identical object.
//
// Ad-hoc maps are shared across all documents processed for a language
// and may be hit from concurrent analyses, so insertion is an atomic
// insert-if-absent under the registry mutex.
type Registry struct {
	mu       sync.Mutex
	logger   *slog.Logger
	posSets  map[string]*PosTagSet
	nerSets  map[string]*NerTagSet
	adhocPos map[string]map[string]*PosTag
	adhocNer map[string]map[string]*NerTag
}

// NewRegistry creates an empty registry. A nil logger falls back to
// slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:   logger,
		posSets:  make(map[string]*PosTagSet),
		nerSets:  make(map[string]*NerTagSet),
		adhocPos: make(map[string]map[string]*PosTag),
		adhocNer: make(map[string]map[string]*NerTag),
	}
}

// SetPosTagSet installs the canonical POS tag set for a language.
func (r *Registry) SetPosTagSet(language string, s *PosTagSet) {
	language = normalize(language)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posSets[language] = s
}

// SetNerTagSet installs the canonical NER tag set for a language.
// Languages without a NER tag set never resolve NER tags, so their
// documents are tokenized and POS-tagged but produce no chunks.
func (r *Registry) SetNerTagSet(language string, s *NerTagSet) {
	language = normalize(language)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nerSets[language] = s
}

// PosTagSet returns the canonical POS tag set for a language, or nil.
func (r *Registry) PosTagSet(language string) *PosTagSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posSets[normalize(language)]
}

// NerTagSet returns the canonical NER tag set for a language, or nil.
func (r *Registry) NerTagSet(language string) *NerTagSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nerSets[normalize(language)]
}

// ResolvePos resolves a raw POS string for a language. An unmapped raw
// string is a recoverable condition: an ad-hoc tag wrapping the raw
// string is synthesized, logged and cached. Empty raw strings resolve
// to nil.
func (r *Registry) ResolvePos(language, raw string) *PosTag {
	if raw == "" {
		return nil
	}
	language = normalize(language)

	r.mu.Lock()
	defer r.mu.Unlock()

	if tag := r.posSets[language].Tag(raw); tag != nil {
		return tag
	}
	adhoc := r.adhocPos[language]
	if adhoc == nil {
		adhoc = make(map[string]*PosTag)
		r.adhocPos[language] = adhoc
	}
	if tag, ok := adhoc[raw]; ok {
		return tag
	}
	r.logger.Info("unmapped POS tag", "tag", raw, "language", language)
	tag := &PosTag{Raw: raw}
	adhoc[raw] = tag
	return tag
}

// ResolveNer resolves a raw NER string for a language. The NoEntity
// sentinel and empty raw strings always resolve to nil, as does any
// raw string for a language without a canonical NER tag set. Unmapped
// raw strings for languages with a NER tag set get an ad-hoc tag.
func (r *Registry) ResolveNer(language, raw string) *NerTag {
	if raw == "" || raw == NoEntity {
		return nil
	}
	language = normalize(language)

	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.nerSets[language]
	if set == nil {
		return nil
	}
	if tag := set.Tag(raw); tag != nil {
		return tag
	}
	adhoc := r.adhocNer[language]
	if adhoc == nil {
		adhoc = make(map[string]*NerTag)
		r.adhocNer[language] = adhoc
	}
	if tag, ok := adhoc[raw]; ok {
		return tag
	}
	r.logger.Info("unmapped NER tag", "tag", raw, "language", language)
	tag := &NerTag{Raw: raw}
	adhoc[raw] = tag
	return tag
}

func normalize(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
