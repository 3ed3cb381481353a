package models

import "time"

type CurationBatch struct {
	ID            int64     `db:"id" json:"id"`
	Analysis      string    `db:"analysis" json:"analysis"`
	AppliedRules  []string  `db:"applied_rules" json:"applied_rules"`
	Summary       string    `db:"summary" json:"summary"`
	TotalAnalyzed int       `db:"total_analyzed" json:"total_analyzed"`
	TotalAuthors  int       `db:"total_authors" json:"total_authors"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type SelectedTweet struct {
	ID              int64     `db:"id" json:"id"`
	BatchID         int64     `db:"batch_id" json:"batch_id"`
	TweetID         string    `db:"tweet_id" json:"tweet_id"`
	Reason          string    `db:"reason" json:"reason"`
	Score           int       `db:"score" json:"score"`
	AuthorAvatarURL string    `db:"author_avatar_url" json:"author_avatar_url"`
	AuthorName      string    `db:"author_name" json:"author_name"`
	AuthorHandle    string    `db:"author_handle" json:"author_handle"`
	AuthorURL       string    `db:"author_url" json:"author_url"`
	IsVerified      bool      `db:"is_verified" json:"is_verified"`
	Text            string    `db:"text" json:"text"`
	PhotoURL        string    `db:"photo_url" json:"photo_url"`
	VideoURL        string    `db:"video_url" json:"video_url"`
	Permalink       string    `db:"permalink" json:"permalink"`
	TweetDate       string    `db:"tweet_date" json:"tweet_date"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
