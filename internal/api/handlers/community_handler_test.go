package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/tokenpulse/community-api/internal/models"
)

type stubFeedService struct {
	tweets []*models.SelectedTweet
	cursor string
	err    error
}

func (s *stubFeedService) ListTweets(ctx context.Context, limit int, cursor int64) ([]*models.SelectedTweet, error) {
	return s.tweets, s.err
}

func (s *stubFeedService) TweetsByBatch(ctx context.Context, batchID int64) ([]*models.SelectedTweet, error) {
	return s.tweets, s.err
}

func (s *stubFeedService) LatestCursor(ctx context.Context) (string, error) {
	return s.cursor, s.err
}

type stubRunner struct {
	batchID int64
	err     error
}

func (s *stubRunner) Run(ctx context.Context) (int64, error) {
	return s.batchID, s.err
}

func newTestApp(svc *stubFeedService, runner *stubRunner) *fiber.App {
	app := fiber.New()
	h := NewCommunityHandler(svc, runner)
	app.Get("/community/batches", h.GetBatches)
	app.Get("/community/batches/cursor", h.GetCursor)
	app.Get("/community/tweets/:batch_id", h.GetBatchTweets)
	app.Post("/community/refresh", h.Refresh)
	return app
}

func TestGetBatches(t *testing.T) {
	svc := &stubFeedService{tweets: []*models.SelectedTweet{
		{ID: 2, TweetID: "t2"},
		{ID: 1, TweetID: "t1"},
	}}
	app := newTestApp(svc, &stubRunner{})

	resp, err := app.Test(httptest.NewRequest("GET", "/community/batches?limit=2&cursor=2", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var tweets []models.SelectedTweet
	if err := json.Unmarshal(body, &tweets); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(tweets) != 2 || tweets[0].TweetID != "t2" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestGetBatchesInvalidCursor(t *testing.T) {
	app := newTestApp(&stubFeedService{}, &stubRunner{})

	resp, err := app.Test(httptest.NewRequest("GET", "/community/batches?cursor=abc", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetBatchesStoreErrorIsOpaque(t *testing.T) {
	app := newTestApp(&stubFeedService{err: errors.New("pq: connection refused")}, &stubRunner{})

	resp, err := app.Test(httptest.NewRequest("GET", "/community/batches", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(body), "pq:") {
		t.Errorf("internal detail leaked: %s", body)
	}
}

func TestGetCursor(t *testing.T) {
	app := newTestApp(&stubFeedService{cursor: "17"}, &stubRunner{})

	resp, err := app.Test(httptest.NewRequest("GET", "/community/batches/cursor", nil))
	if err != nil {
		t.Fatal(err)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["cursor"] != "17" {
		t.Errorf("cursor = %q, want 17", payload["cursor"])
	}
}

func TestGetBatchTweetsInvalidID(t *testing.T) {
	app := newTestApp(&stubFeedService{}, &stubRunner{})

	for _, path := range []string{"/community/tweets/abc", "/community/tweets/0", "/community/tweets/-3"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestRefresh(t *testing.T) {
	app := newTestApp(&stubFeedService{}, &stubRunner{batchID: 7})

	resp, err := app.Test(httptest.NewRequest("POST", "/community/refresh", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatal(err)
	}
	if payload["batch_id"].(float64) != 7 {
		t.Errorf("batch_id = %v, want 7", payload["batch_id"])
	}
}

func TestRefreshFailure(t *testing.T) {
	app := newTestApp(&stubFeedService{}, &stubRunner{err: errors.New("cycle failed")})

	resp, err := app.Test(httptest.NewRequest("POST", "/community/refresh", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}
