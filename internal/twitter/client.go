package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.twitter.com/2/tweets/search/recent"

	// Reply noise drowns out original content, so every query carries the
	// same exclusion.
	nonReplyFilter = " -is:reply"

	tweetFields = "created_at,author_id,public_metrics,entities,referenced_tweets,attachments"
	expansions  = "author_id,attachments.media_keys"
	userFields  = "username,name,verified,profile_image_url,public_metrics"
	mediaFields = "media_key,type,url,preview_image_url"
)

// UpstreamError is a non-2xx answer from the search API.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("twitter: upstream returned status %d: %s", e.Status, e.Body)
}

// Client issues recent-search requests with a rotated bearer token.
type Client struct {
	pool    *CredentialPool
	http    *http.Client
	baseURL string
}

func NewClient(pool *CredentialPool) *Client {
	return &Client{
		pool: pool,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

// Search runs one recent-search call for the topic. The non-reply filter is
// always appended and author/media expansions are always requested so the
// response can be normalized without follow-up lookups. Every attempt,
// success or failure, is charged against the credential used.
func (c *Client) Search(ctx context.Context, query string, maxResults int, nextToken string) (*SearchPage, error) {
	cred, err := c.pool.Next()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query+nonReplyFilter)
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("tweet.fields", tweetFields)
	params.Set("expansions", expansions)
	params.Set("user.fields", userFields)
	params.Set("media.fields", mediaFields)
	if nextToken != "" {
		params.Set("next_token", nextToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("twitter: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)

	c.pool.RecordUsage(cred)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter: search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twitter: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Info("twitter search returned non-2xx",
			"status", resp.StatusCode,
			"credential_id", cred.ID)
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var page SearchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("twitter: malformed search response: %w", err)
	}

	return &page, nil
}
