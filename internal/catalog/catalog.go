// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog indexes StoryMetadata in a SQLite database so a corpus can
// be queried by genre, strategy or seed word without rescanning the corpus
// file. The catalog is derived data: it can always be rebuilt from the
// metadata sidecar with Ingest.
package catalog

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/corpusgen/pkg/types"
)

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog at path and creates the schema if it
// does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stories (
			story_id TEXT PRIMARY KEY,
			genre TEXT NOT NULL,
			strategy TEXT NOT NULL,
			word_count INTEGER NOT NULL,
			character_count INTEGER NOT NULL,
			estimated_cost REAL NOT NULL,
			created_at TEXT NOT NULL,
			prompt TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS story_seeds (
			story_id TEXT NOT NULL REFERENCES stories(story_id) ON DELETE CASCADE,
			seed TEXT NOT NULL,
			PRIMARY KEY (story_id, seed)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stories_genre ON stories(genre)`,
		`CREATE INDEX IF NOT EXISTS idx_story_seeds_seed ON story_seeds(seed)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts meta, replacing any earlier row with the same story ID.
func (s *Store) Record(ctx context.Context, meta types.StoryMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := record(ctx, tx, meta); err != nil {
		return err
	}
	return tx.Commit()
}

func record(ctx context.Context, tx *sql.Tx, meta types.StoryMetadata) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO stories (story_id, genre, strategy, word_count, character_count, estimated_cost, created_at, prompt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(story_id) DO UPDATE SET
			genre=excluded.genre, strategy=excluded.strategy, word_count=excluded.word_count,
			character_count=excluded.character_count, estimated_cost=excluded.estimated_cost,
			created_at=excluded.created_at, prompt=excluded.prompt`,
		meta.StoryID, meta.Genre, meta.GenerationStrategy, meta.WordCount,
		meta.CharacterCount, meta.EstimatedCost,
		meta.Timestamp.UTC().Format(time.RFC3339Nano), meta.PromptUsed,
	)
	if err != nil {
		return fmt.Errorf("upserting story %s: %w", meta.StoryID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM story_seeds WHERE story_id = ?`, meta.StoryID); err != nil {
		return fmt.Errorf("clearing seeds for %s: %w", meta.StoryID, err)
	}
	for _, seed := range meta.SeedsUsed {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO story_seeds (story_id, seed) VALUES (?, ?)`, meta.StoryID, seed,
		); err != nil {
			return fmt.Errorf("inserting seed for %s: %w", meta.StoryID, err)
		}
	}
	return nil
}

// GenreStats aggregates the stories of one genre.
type GenreStats struct {
	Genre   string
	Stories int
	Words   int
	Cost    float64
}

// Stats returns per-genre totals ordered by descending word count.
func (s *Store) Stats(ctx context.Context) ([]GenreStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT genre, COUNT(*), COALESCE(SUM(word_count), 0), COALESCE(SUM(estimated_cost), 0)
		 FROM stories GROUP BY genre ORDER BY SUM(word_count) DESC, genre`)
	if err != nil {
		return nil, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	var out []GenreStats
	for rows.Next() {
		var g GenreStats
		if err := rows.Scan(&g.Genre, &g.Stories, &g.Words, &g.Cost); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SeedCount is the number of stories that used one seed word.
type SeedCount struct {
	Seed    string
	Stories int
}

// SeedUsage returns how many stories used each seed word, most used first
// with ties broken alphabetically, limited to limit rows (all rows when limit <= 0).
func (s *Store) SeedUsage(ctx context.Context, limit int) ([]SeedCount, error) {
	q := `SELECT seed, COUNT(*) FROM story_seeds GROUP BY seed ORDER BY COUNT(*) DESC, seed`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying seed usage: %w", err)
	}
	defer rows.Close()

	var out []SeedCount
	for rows.Next() {
		var c SeedCount
		if err := rows.Scan(&c.Seed, &c.Stories); err != nil {
			return nil, fmt.Errorf("scanning seed row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// IngestSummary holds counts from an Ingest run.
type IngestSummary struct {
	Indexed int
	Failed  int
}

// Ingest reads JSONL StoryMetadata from r, typically the metadata sidecar,
// and records every line in one transaction. Lines that do not parse are
// reported to w and counted as failed.
func (s *Store) Ingest(ctx context.Context, r io.Reader, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		var meta types.StoryMetadata
		if err := json.Unmarshal(sc.Bytes(), &meta); err != nil || meta.StoryID == "" {
			fmt.Fprintf(w, "failed  line %d: not a story record\n", line)
			summary.Failed++
			continue
		}
		if err := record(ctx, tx, meta); err != nil {
			return summary, err
		}
		summary.Indexed++
	}
	if err := sc.Err(); err != nil {
		return summary, fmt.Errorf("reading metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(w, "indexed: %d, failed: %d\n", summary.Indexed, summary.Failed)
	return summary, nil
}
