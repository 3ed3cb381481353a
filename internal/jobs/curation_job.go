package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/tokenpulse/community-api/configs"
	"github.com/tokenpulse/community-api/internal/curation"
	"github.com/tokenpulse/community-api/internal/models"
	"github.com/tokenpulse/community-api/internal/normalize"
	"github.com/tokenpulse/community-api/internal/repository"
	"github.com/tokenpulse/community-api/internal/twitter"
)

// cycleTimeout bounds one full cycle so a hung upstream call cannot block
// the next firing forever.
const cycleTimeout = 5 * time.Minute

// Searcher is the slice of the twitter client the job needs.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, nextToken string) (*twitter.SearchPage, error)
}

// Curator is the slice of the curation engine the job needs.
type Curator interface {
	SelectBest(ctx context.Context, projections []normalize.Projection) (*curation.Result, *curation.Exchange, error)
}

// Archiver stores prompt/response exchanges out of band.
type Archiver interface {
	ArchiveExchange(ctx context.Context, prompt, response string) error
}

// CurationJob runs one end-to-end cycle: search, normalize, project, curate,
// persist. It is the single error boundary of the pipeline; every stage
// failure is logged with its operation and ends the cycle without retries.
type CurationJob struct {
	cfg      config.Config
	searcher Searcher
	curator  Curator
	br       repository.BatchRepository
	archiver Archiver

	running sync.Mutex
}

func NewCurationJob(
	cfg config.Config,
	searcher Searcher,
	curator Curator,
	br repository.BatchRepository,
	archiver Archiver) *CurationJob {
	return &CurationJob{
		cfg:      cfg,
		searcher: searcher,
		curator:  curator,
		br:       br,
		archiver: archiver,
	}
}

// RunScheduled is the cron entry point. An overrunning cycle causes the next
// firing to be skipped, never queued behind it.
func (j *CurationJob) RunScheduled() {
	if !j.running.TryLock() {
		slog.Info("curation cycle still running, skipping this firing")
		return
	}
	defer j.running.Unlock()

	if err := j.runCycle(context.Background()); err != nil {
		slog.Error("curation cycle failed", "error", err)
	}
}

// Run executes one cycle synchronously. It backs the manual refresh endpoint
// and returns the new batch id on success.
func (j *CurationJob) Run(ctx context.Context) (int64, error) {
	j.running.Lock()
	defer j.running.Unlock()

	return j.cycle(ctx)
}

func (j *CurationJob) runCycle(ctx context.Context) error {
	_, err := j.cycle(ctx)
	return err
}

func (j *CurationJob) cycle(parent context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(parent, cycleTimeout)
	defer cancel()

	start := time.Now()
	slog.Info("curation cycle started", "topic", j.cfg.CommunityTopic)

	page, err := j.searcher.Search(ctx, j.cfg.CommunityTopic, j.cfg.SearchMaxResults, "")
	if err != nil {
		slog.Error("search stage failed", "operation", "search", "error", err)
		return 0, err
	}

	collections := normalize.Normalize(page)
	slog.Info("normalized search page",
		"posts", len(collections.Posts),
		"authors", len(collections.Authors),
		"media", len(collections.Media))

	projections := normalize.ProjectAll(collections)

	result, exchange, err := j.curator.SelectBest(ctx, projections)
	if exchange != nil && j.archiver != nil {
		if archiveErr := j.archiver.ArchiveExchange(ctx, exchange.Prompt, exchange.Response); archiveErr != nil {
			slog.Info("failed to archive curation exchange", "error", archiveErr)
		}
	}
	if err != nil {
		slog.Error("curation stage failed", "operation", "curate", "error", err)
		return 0, err
	}

	batch := &models.CurationBatch{
		Analysis:      result.Analysis,
		AppliedRules:  result.AppliedRules,
		Summary:       result.Summary,
		TotalAnalyzed: result.TotalAnalyzed,
		TotalAuthors:  result.TotalAuthors,
	}

	tweets := make([]*models.SelectedTweet, 0, len(result.Selections))
	for _, sel := range result.Selections {
		p := sel.Projection
		tweets = append(tweets, &models.SelectedTweet{
			TweetID:         p.ID,
			Reason:          sel.Reason,
			Score:           sel.Score,
			AuthorAvatarURL: p.AuthorAvatarURL,
			AuthorName:      p.AuthorName,
			AuthorHandle:    p.Handle,
			AuthorURL:       p.AuthorHandleURL,
			IsVerified:      p.IsVerified,
			Text:            p.Text,
			PhotoURL:        p.PhotoURL,
			VideoURL:        p.VideoURL,
			Permalink:       p.Permalink,
			TweetDate:       p.Date,
		})
	}

	batchID, err := j.br.InsertBatch(ctx, batch, tweets)
	if err != nil {
		slog.Error("persist stage failed", "operation", "persist", "error", err)
		return 0, err
	}

	slog.Info("curation cycle completed",
		"batch_id", batchID,
		"selected", len(tweets),
		"duration", time.Since(start))

	return batchID, nil
}
