package store

import "fmt"

// schemaSQL returns the DDL for all tables. embeddingDim controls the
// vec0 virtual table dimension.
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
-- Triple store: one row per statement
CREATE TABLE IF NOT EXISTS triples (
    id INTEGER PRIMARY KEY,
    subject TEXT NOT NULL,
    predicate TEXT NOT NULL,
    object TEXT NOT NULL,
    object_is_iri INTEGER NOT NULL DEFAULT 0,
    source TEXT DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(subject, predicate, object)
);

-- Full-text search over triples via FTS5
CREATE VIRTUAL TABLE IF NOT EXISTS triples_fts USING fts5(
    subject,
    predicate,
    object,
    content='triples',
    content_rowid='id',
    tokenize='porter unicode61'
);

-- FTS triggers to keep index in sync
CREATE TRIGGER IF NOT EXISTS triples_ai AFTER INSERT ON triples BEGIN
    INSERT INTO triples_fts(rowid, subject, predicate, object) VALUES (new.id, new.subject, new.predicate, new.object);
END;
CREATE TRIGGER IF NOT EXISTS triples_ad AFTER DELETE ON triples BEGIN
    INSERT INTO triples_fts(triples_fts, rowid, subject, predicate, object) VALUES ('delete', old.id, old.subject, old.predicate, old.object);
END;
CREATE TRIGGER IF NOT EXISTS triples_au AFTER UPDATE ON triples BEGIN
    INSERT INTO triples_fts(triples_fts, rowid, subject, predicate, object) VALUES ('delete', old.id, old.subject, old.predicate, old.object);
    INSERT INTO triples_fts(rowid, subject, predicate, object) VALUES (new.id, new.subject, new.predicate, new.object);
END;

-- Entity labels eligible for semantic candidate retrieval
CREATE TABLE IF NOT EXISTS labels (
    id INTEGER PRIMARY KEY,
    subject TEXT NOT NULL,
    label TEXT NOT NULL,
    UNIQUE(subject, label)
);

-- Label embeddings via sqlite-vec (rowid matches labels.id)
CREATE VIRTUAL TABLE IF NOT EXISTS vec_labels USING vec0(
    label_id INTEGER PRIMARY KEY,
    embedding float[%d]
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_triples_subject ON triples(subject);
CREATE INDEX IF NOT EXISTS idx_triples_predicate ON triples(predicate);
CREATE INDEX IF NOT EXISTS idx_triples_source ON triples(source);
CREATE INDEX IF NOT EXISTS idx_labels_subject ON labels(subject);
`, embeddingDim)
}
