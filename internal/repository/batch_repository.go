package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/tokenpulse/community-api/internal/models"
)

type BatchRepository interface {
	InsertBatch(ctx context.Context, batch *models.CurationBatch, tweets []*models.SelectedTweet) (int64, error)
	ListNewest(ctx context.Context, limit int, cursor int64) ([]*models.SelectedTweet, error)
	ListByBatchID(ctx context.Context, batchID int64) ([]*models.SelectedTweet, error)
	MaxSelectedID(ctx context.Context) (int64, error)
}

type batchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) BatchRepository {
	return &batchRepository{db: db}
}

// InsertBatch writes the batch header and all of its selected tweets in one
// transaction so the read path never sees a header without children.
func (r *batchRepository) InsertBatch(ctx context.Context, batch *models.CurationBatch, tweets []*models.SelectedTweet) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer tx.Rollback()

	rulesJSON, err := json.Marshal(batch.AppliedRules)
	if err != nil {
		return 0, err
	}

	var batchID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO curation_batches (analysis, applied_rules, summary, total_analyzed, total_authors)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, batch.Analysis, string(rulesJSON), batch.Summary, batch.TotalAnalyzed, batch.TotalAuthors).Scan(&batchID)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	for _, t := range tweets {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO selected_tweets (batch_id, tweet_id, reason, score,
				author_avatar_url, author_name, author_handle, author_url,
				is_verified, text, photo_url, video_url, permalink, tweet_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, batchID, t.TweetID, t.Reason, t.Score,
			t.AuthorAvatarURL, t.AuthorName, t.AuthorHandle, t.AuthorURL,
			t.IsVerified, t.Text, t.PhotoURL, t.VideoURL, t.Permalink, t.TweetDate)
		if err != nil {
			slog.Info(err.Error())
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return batchID, nil
}

const selectedTweetColumns = `id, batch_id, tweet_id, reason, score,
	author_avatar_url, author_name, author_handle, author_url,
	is_verified, text, photo_url, video_url, permalink, tweet_date, created_at`

// ListNewest returns selected tweets with ids at or below the cursor,
// newest-first, capped at limit. A zero cursor means "from the top".
func (r *batchRepository) ListNewest(ctx context.Context, limit int, cursor int64) ([]*models.SelectedTweet, error) {
	query := `SELECT ` + selectedTweetColumns + `
		FROM selected_tweets
		WHERE ($2 = 0 OR id <= $2)
		ORDER BY id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit, cursor)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanSelectedTweets(rows)
}

// ListByBatchID returns one batch's tweets in ascending insertion order.
func (r *batchRepository) ListByBatchID(ctx context.Context, batchID int64) ([]*models.SelectedTweet, error) {
	query := `SELECT ` + selectedTweetColumns + `
		FROM selected_tweets
		WHERE batch_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return scanSelectedTweets(rows)
}

// MaxSelectedID returns the current high-water mark, the starting cursor for
// a fresh top-down pagination walk. Zero means the feed is empty.
func (r *batchRepository) MaxSelectedID(ctx context.Context) (int64, error) {
	var maxID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM selected_tweets`).Scan(&maxID)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return maxID.Int64, nil
}

func scanSelectedTweets(rows *sql.Rows) ([]*models.SelectedTweet, error) {
	var tweets []*models.SelectedTweet
	for rows.Next() {
		var t models.SelectedTweet
		err := rows.Scan(&t.ID, &t.BatchID, &t.TweetID, &t.Reason, &t.Score,
			&t.AuthorAvatarURL, &t.AuthorName, &t.AuthorHandle, &t.AuthorURL,
			&t.IsVerified, &t.Text, &t.PhotoURL, &t.VideoURL, &t.Permalink,
			&t.TweetDate, &t.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		tweets = append(tweets, &t)
	}
	return tweets, rows.Err()
}
