package service

import (
	"context"
	"strconv"

	"github.com/tokenpulse/community-api/internal/models"
	"github.com/tokenpulse/community-api/internal/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// FeedService is the read side of the community feed. It never touches the
// write pipeline; batches are append-only so reads during a cycle are safe.
type FeedService interface {
	ListTweets(ctx context.Context, limit int, cursor int64) ([]*models.SelectedTweet, error)
	TweetsByBatch(ctx context.Context, batchID int64) ([]*models.SelectedTweet, error)
	LatestCursor(ctx context.Context) (string, error)
}

type feedService struct {
	br repository.BatchRepository
}

func NewFeedService(br repository.BatchRepository) FeedService {
	return &feedService{br: br}
}

// ListTweets returns up to limit tweets at or below the cursor, newest
// first. A caller that subtracts limit from the cursor after each page
// (clamped at zero) walks the full history with no duplicates.
func (s *feedService) ListTweets(ctx context.Context, limit int, cursor int64) ([]*models.SelectedTweet, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if cursor < 0 {
		cursor = 0
	}

	tweets, err := s.br.ListNewest(ctx, limit, cursor)
	if err != nil {
		return nil, err
	}
	if tweets == nil {
		tweets = []*models.SelectedTweet{}
	}
	return tweets, nil
}

func (s *feedService) TweetsByBatch(ctx context.Context, batchID int64) ([]*models.SelectedTweet, error) {
	tweets, err := s.br.ListByBatchID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if tweets == nil {
		tweets = []*models.SelectedTweet{}
	}
	return tweets, nil
}

// LatestCursor returns the current high-water mark as a string cursor.
func (s *feedService) LatestCursor(ctx context.Context) (string, error) {
	maxID, err := s.br.MaxSelectedID(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(maxID, 10), nil
}
