package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/textspan/pkg/textspan/internalerr"
	"github.com/cognicore/textspan/pkg/textspan/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes
// the schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	language TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_tokens (
	analysis_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	pos TEXT,
	lemma TEXT,
	PRIMARY KEY(analysis_id, idx),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS analysis_sentences (
	analysis_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	PRIMARY KEY(analysis_id, idx),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS analysis_chunks (
	analysis_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	start_offset INTEGER NOT NULL,
	end_offset INTEGER NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY(analysis_id, idx),
	FOREIGN KEY(analysis_id) REFERENCES analyses(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_analyses_language ON analyses(language);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveAnalysis inserts or replaces an analysis and its spans
func (s *sqliteStore) SaveAnalysis(ctx context.Context, a store.Analysis) error {
	if a.ID == "" {
		return fmt.Errorf("analysis without ID: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO analyses (id, language, text, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	language=excluded.language,
	text=excluded.text,
	created_at=excluded.created_at;
`
	if _, err := tx.ExecContext(ctx, stmt, a.ID, a.Language, a.Text,
		a.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if err := replaceTokens(ctx, tx, a.ID, a.Tokens); err != nil {
		return err
	}
	if err := replaceSentences(ctx, tx, a.ID, a.Sentences); err != nil {
		return err
	}
	if err := replaceChunks(ctx, tx, a.ID, a.Chunks); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceTokens(ctx context.Context, tx *sql.Tx, id string, tokens []store.TokenRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_tokens WHERE analysis_id=?`, id); err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO analysis_tokens (analysis_id, idx, start_offset, end_offset, pos, lemma)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, t := range tokens {
		if _, err := stmt.ExecContext(ctx, id, i, t.Start, t.End, t.Pos, t.Lemma); err != nil {
			return err
		}
	}
	return nil
}

func replaceSentences(ctx context.Context, tx *sql.Tx, id string, sentences []store.SpanRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_sentences WHERE analysis_id=?`, id); err != nil {
		return err
	}
	if len(sentences) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO analysis_sentences (analysis_id, idx, start_offset, end_offset)
VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, sp := range sentences {
		if _, err := stmt.ExecContext(ctx, id, i, sp.Start, sp.End); err != nil {
			return err
		}
	}
	return nil
}

func replaceChunks(ctx context.Context, tx *sql.Tx, id string, chunks []store.ChunkRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_chunks WHERE analysis_id=?`, id); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO analysis_chunks (analysis_id, idx, start_offset, end_offset, tag)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, id, i, c.Start, c.End, c.Tag); err != nil {
			return err
		}
	}
	return nil
}

// GetAnalysis retrieves an analysis by ID
func (s *sqliteStore) GetAnalysis(ctx context.Context, id string) (store.Analysis, error) {
	var a store.Analysis
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, language, text, created_at FROM analyses WHERE id=?`, id).
		Scan(&a.ID, &a.Language, &a.Text, &createdAt)
	if err == sql.ErrNoRows {
		return store.Analysis{}, fmt.Errorf("analysis %q: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Analysis{}, err
	}

	a.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return store.Analysis{}, fmt.Errorf("parse created_at of analysis %q: %w", id, err)
	}

	if a.Tokens, err = s.loadTokens(ctx, id); err != nil {
		return store.Analysis{}, err
	}
	if a.Sentences, err = s.loadSentences(ctx, id); err != nil {
		return store.Analysis{}, err
	}
	if a.Chunks, err = s.loadChunks(ctx, id); err != nil {
		return store.Analysis{}, err
	}
	return a, nil
}

func (s *sqliteStore) loadTokens(ctx context.Context, id string) ([]store.TokenRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT start_offset, end_offset, pos, lemma
FROM analysis_tokens WHERE analysis_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.TokenRecord
	for rows.Next() {
		var t store.TokenRecord
		if err := rows.Scan(&t.Start, &t.End, &t.Pos, &t.Lemma); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadSentences(ctx context.Context, id string) ([]store.SpanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT start_offset, end_offset
FROM analysis_sentences WHERE analysis_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.SpanRecord
	for rows.Next() {
		var sp store.SpanRecord
		if err := rows.Scan(&sp.Start, &sp.End); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadChunks(ctx context.Context, id string) ([]store.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT start_offset, end_offset, tag
FROM analysis_chunks WHERE analysis_id=? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ChunkRecord
	for rows.Next() {
		var c store.ChunkRecord
		if err := rows.Scan(&c.Start, &c.End, &c.Tag); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListAnalyses returns analyses newest first, optionally filtered by
// language. A non-positive limit means no limit.
func (s *sqliteStore) ListAnalyses(ctx context.Context, language string, limit int) ([]store.Analysis, error) {
	query := `SELECT id FROM analyses`
	args := []any{}
	if language != "" {
		query += ` WHERE language=?`
		args = append(args, language)
	}
	// ULIDs sort lexicographically by creation time.
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]store.Analysis, 0, len(ids))
	for _, id := range ids {
		a, err := s.GetAnalysis(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
