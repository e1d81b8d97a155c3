// Package store persists the knowledge graph in SQLite and exposes the
// scored full-text and vector searches that entity linking runs candidate
// retrieval against.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brunobiangulo/graphmint/rdf"
)

func init() {
	sqlite_vec.Auto()
}

// Hit is one scored candidate from a search over the triple index. Subject
// is the knowledge-graph identifier; Predicate and Object are the attribute
// snapshot of the row that matched.
type Hit struct {
	Subject   string  `json:"subject"`
	Predicate string  `json:"predicate"`
	Object    string  `json:"object"`
	Score     float64 `json:"score"`
}

// Stats summarizes store contents.
type Stats struct {
	Triples  int64 `json:"triples"`
	Subjects int64 `json:"subjects"`
	Labels   int64 `json:"labels"`
}

// Store wraps the SQLite database for all graphmint persistence.
type Store struct {
	db           *sql.DB
	embeddingDim int
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema including sqlite-vec and FTS5 virtual tables.
func New(dbPath string, embeddingDim int) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL(embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, embeddingDim: embeddingDim}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw database handle for diagnostics.
func (s *Store) DB() *sql.DB {
	return s.db
}

// EmbeddingDim returns the configured vector dimension.
func (s *Store) EmbeddingDim() int {
	return s.embeddingDim
}

// --- Triple operations ---

// InsertTriples stores triples under the given source tag, skipping
// statements already present. Returns the number of newly inserted rows.
func (s *Store) InsertTriples(ctx context.Context, triples []rdf.Triple, source string) (int, error) {
	if len(triples) == 0 {
		return 0, nil
	}

	var inserted int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO triples (subject, predicate, object, object_is_iri, source)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range triples {
			res, err := stmt.ExecContext(ctx, t.Subject, t.Predicate, t.Object, boolToInt(t.ObjectIsIRI), source)
			if err != nil {
				return fmt.Errorf("inserting triple %s: %w", t, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// TriplesForSubject returns all statements about one subject.
func (s *Store) TriplesForSubject(ctx context.Context, subject string) ([]rdf.Triple, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, predicate, object, object_is_iri
		FROM triples WHERE subject = ? ORDER BY id
	`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTriples(rows)
}

// AllTriples returns the full contents of the store in insertion order.
func (s *Store) AllTriples(ctx context.Context) ([]rdf.Triple, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, predicate, object, object_is_iri FROM triples ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTriples(rows)
}

// DeleteBySource removes all triples and labels ingested under a source tag.
func (s *Store) DeleteBySource(ctx context.Context, source string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM vec_labels WHERE label_id IN (
				SELECT l.id FROM labels l
				WHERE l.subject IN (SELECT subject FROM triples WHERE source = ?)
				AND l.subject NOT IN (SELECT subject FROM triples WHERE source != ?)
			)
		`, source, source); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM labels
			WHERE subject IN (SELECT subject FROM triples WHERE source = ?)
			AND subject NOT IN (SELECT subject FROM triples WHERE source != ?)
		`, source, source); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM triples WHERE source = ?", source)
		return err
	})
}

// --- Search operations ---

// FTSSearch performs a full-text search over subjects, predicates, and
// objects using FTS5 BM25 ranking. A query matching nothing returns an
// empty result, not an error.
func (s *Store) FTSSearch(ctx context.Context, query string, limit int) ([]Hit, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.subject, t.predicate, t.object, f.rank
		FROM triples_fts f
		JOIN triples t ON t.id = f.rowid
		WHERE triples_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var rank float64
		if err := rows.Scan(&h.Subject, &h.Predicate, &h.Object, &rank); err != nil {
			return nil, err
		}
		// FTS5 rank is negative (lower = better), convert to positive score
		h.Score = -rank
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// InsertLabelEmbedding records a label for a subject together with its
// embedding so vector search can retrieve the subject semantically.
func (s *Store) InsertLabelEmbedding(ctx context.Context, subject, label string, embedding []float32) error {
	if len(embedding) != s.embeddingDim {
		return fmt.Errorf("embedding dim %d does not match store dim %d", len(embedding), s.embeddingDim)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO labels (subject, label) VALUES (?, ?)
		`, subject, label)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			// Label already known; embedding already stored.
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vec_labels (label_id, embedding) VALUES (?, ?)
		`, id, serializeFloat32(embedding))
		return err
	})
}

// VectorSearch returns the k nearest labels to the query embedding.
func (s *Store) VectorSearch(ctx context.Context, queryEmbedding []float32, k int) ([]Hit, error) {
	if k <= 0 {
		k = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.subject, l.label, v.distance
		FROM vec_labels v
		JOIN labels l ON l.id = v.label_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(queryEmbedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var distance float64
		if err := rows.Scan(&h.Subject, &h.Object, &distance); err != nil {
			return nil, err
		}
		h.Predicate = rdf.PredLabel
		// Convert distance to similarity score (1 - distance for cosine)
		h.Score = 1.0 - distance
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// DBStats returns row counts for diagnostics.
func (s *Store) DBStats(ctx context.Context) (*Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM triples").Scan(&st.Triples); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT subject) FROM triples").Scan(&st.Subjects); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM labels").Scan(&st.Labels); err != nil {
		return nil, err
	}
	return &st, nil
}

// --- Helpers ---

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scanTriples(rows *sql.Rows) ([]rdf.Triple, error) {
	var triples []rdf.Triple
	for rows.Next() {
		var t rdf.Triple
		var isIRI int
		if err := rows.Scan(&t.Subject, &t.Predicate, &t.Object, &isIRI); err != nil {
			return nil, err
		}
		t.ObjectIsIRI = isIRI != 0
		triples = append(triples, t)
	}
	return triples, rows.Err()
}

// ftsQuery builds an FTS5 MATCH expression from free text: each token is
// quoted (FTS5 syntax characters would otherwise be interpreted) and tokens
// are OR-ed so any matching field scores.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " OR ")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
