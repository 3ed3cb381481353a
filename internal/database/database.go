package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect opens the Postgres pool and verifies it is reachable.
func Connect(postgresURI string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}

	return db, nil
}

// Migrate applies the schema. Batches and their selected tweets are
// append-only; nothing mutates a row after insert, which is what keeps
// concurrent reads safe during a cycle's write.
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS curation_batches (
		id BIGSERIAL PRIMARY KEY,
		analysis TEXT NOT NULL DEFAULT '',
		applied_rules TEXT NOT NULL DEFAULT '[]',
		summary TEXT NOT NULL DEFAULT '',
		total_analyzed INTEGER NOT NULL DEFAULT 0,
		total_authors INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS selected_tweets (
		id BIGSERIAL PRIMARY KEY,
		batch_id BIGINT NOT NULL REFERENCES curation_batches(id),
		tweet_id TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		score INTEGER NOT NULL DEFAULT 0,
		author_avatar_url TEXT NOT NULL DEFAULT '',
		author_name TEXT NOT NULL DEFAULT '',
		author_handle TEXT NOT NULL DEFAULT '',
		author_url TEXT NOT NULL DEFAULT '',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		text TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL DEFAULT '',
		permalink TEXT NOT NULL DEFAULT '',
		tweet_date TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_selected_tweets_batch_id ON selected_tweets(batch_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
