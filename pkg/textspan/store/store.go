// Package store persists finished analyses. The analysis core itself
// never touches a store; persistence is a downstream concern for
// callers that want to keep results around.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textspan/pkg/textspan/model"
)

// Store persists and retrieves analysis records
type Store interface {
	Close() error

	SaveAnalysis(ctx context.Context, a Analysis) error
	GetAnalysis(ctx context.Context, id string) (Analysis, error)
	ListAnalyses(ctx context.Context, language string, limit int) ([]Analysis, error)
}

// Analysis is a stored analysis result: the document text plus its
// token, sentence and chunk spans with resolved tag strings.
type Analysis struct {
	ID        string
	Language  string
	Text      string
	CreatedAt time.Time
	Tokens    []TokenRecord
	Sentences []SpanRecord
	Chunks    []ChunkRecord
}

// SpanRecord is a stored [Start, End) span
type SpanRecord struct {
	Start int
	End   int
}

// TokenRecord is a stored token span with its annotations flattened to
// the raw tag strings.
type TokenRecord struct {
	Start int
	End   int
	Pos   string
	Lemma string
}

// ChunkRecord is a stored named-entity chunk span
type ChunkRecord struct {
	Start int
	End   int
	Tag   string
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a fresh ULID so listings sort by creation time.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// FromAnalysedText flattens an AnalysedText into a storable record
// with a fresh ID.
func FromAnalysedText(language string, at *model.AnalysedText, createdAt time.Time) Analysis {
	a := Analysis{
		ID:        NewID(),
		Language:  language,
		Text:      at.Text(),
		CreatedAt: createdAt,
	}

	for _, t := range at.Tokens() {
		rec := TokenRecord{Start: t.Start, End: t.End}
		if t.Pos != nil {
			rec.Pos = t.Pos.Raw
		}
		if t.Morpho != nil {
			rec.Lemma = t.Morpho.Lemma
		}
		a.Tokens = append(a.Tokens, rec)
	}
	for _, s := range at.Sentences() {
		a.Sentences = append(a.Sentences, SpanRecord{Start: s.Start, End: s.End})
	}
	for _, c := range at.Chunks() {
		a.Chunks = append(a.Chunks, ChunkRecord{Start: c.Start, End: c.End, Tag: c.Tag.Raw})
	}
	return a
}
