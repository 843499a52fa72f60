package tags

// PosTag is a part-of-speech tag scoped to one language session.
// Canonical tags come from a tag set definition and may carry a
// coarse category; ad-hoc tags wrap an unmapped raw string verbatim.
type PosTag struct {
	Raw      string
	Category string
}

// NerTag is a named-entity tag scoped to one language session.
// Canonical tags may carry an entity type; ad-hoc tags wrap an
// unmapped raw string verbatim.
type NerTag struct {
	Raw  string
	Type string
}

// PosTagSet is an immutable collection of canonical POS tags for one
// language, queried by the raw string an annotator emits. Absence of a
// match is not an error; the registry falls back to ad-hoc synthesis.
type PosTagSet struct {
	byRaw map[string]*PosTag
}

// NewPosTagSet builds a tag set from canonical tags. Later tags win on
// duplicate raw strings.
func NewPosTagSet(tags ...*PosTag) *PosTagSet {
	byRaw := make(map[string]*PosTag, len(tags))
	for _, t := range tags {
		if t == nil || t.Raw == "" {
			continue
		}
		byRaw[t.Raw] = t
	}
	return &PosTagSet{byRaw: byRaw}
}

// Tag returns the canonical tag for a raw string, or nil if unknown.
func (s *PosTagSet) Tag(raw string) *PosTag {
	if s == nil {
		return nil
	}
	return s.byRaw[raw]
}

// Len returns the number of canonical tags in the set.
func (s *PosTagSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byRaw)
}

// NerTagSet is an immutable collection of canonical NER tags for one
// language, queried by raw string.
type NerTagSet struct {
	byRaw map[string]*NerTag
}

// NewNerTagSet builds a tag set from canonical tags. Later tags win on
// duplicate raw strings.
func NewNerTagSet(tags ...*NerTag) *NerTagSet {
	byRaw := make(map[string]*NerTag, len(tags))
	for _, t := range tags {
		if t == nil || t.Raw == "" {
			continue
		}
		byRaw[t.Raw] = t
	}
	return &NerTagSet{byRaw: byRaw}
}

// Tag returns the canonical tag for a raw string, or nil if unknown.
func (s *NerTagSet) Tag(raw string) *NerTag {
	if s == nil {
		return nil
	}
	return s.byRaw[raw]
}

// Len returns the number of canonical tags in the set.
func (s *NerTagSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byRaw)
}
