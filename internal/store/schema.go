package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS papers (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    content_hash TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_papers_content_hash ON papers(content_hash);

-- One row per question; position is the index in the paper's question list.
CREATE TABLE IF NOT EXISTS questions (
    paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    number INTEGER NOT NULL,
    preview TEXT NOT NULL,
    content TEXT NOT NULL,
    marks TEXT NOT NULL,
    chapter TEXT NOT NULL DEFAULT '',
    year TEXT NOT NULL,
    page INTEGER NOT NULL,
    PRIMARY KEY (paper_id, position)
);
`
