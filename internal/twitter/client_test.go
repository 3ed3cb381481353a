package twitter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const searchResponse = `{
	"data": [
		{"id": "1", "author_id": "u1", "text": "hello", "created_at": "2025-08-01T10:00:00Z"}
	],
	"includes": {
		"users": [{"id": "u1", "username": "alice", "name": "Alice"}]
	},
	"meta": {"result_count": 1}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens []string, maxRequests int) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(NewCredentialPool(tokens, maxRequests))
	client.baseURL = srv.URL
	return client, srv
}

func TestSearchBuildsQueryAndAuth(t *testing.T) {
	var gotQuery, gotAuth, gotExpansions string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotExpansions = r.URL.Query().Get("expansions")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(searchResponse))
	}, []string{"tok-a"}, 10)

	page, err := client.Search(context.Background(), "bitcoin", 30, "")
	if err != nil {
		t.Fatalf("Search() returned error: %v", err)
	}

	if gotQuery != "bitcoin -is:reply" {
		t.Errorf("query = %q, want the non-reply filter appended", gotQuery)
	}
	if gotAuth != "Bearer tok-a" {
		t.Errorf("Authorization = %q, want Bearer tok-a", gotAuth)
	}
	if !strings.Contains(gotExpansions, "author_id") || !strings.Contains(gotExpansions, "attachments.media_keys") {
		t.Errorf("expansions = %q, missing author/media expansions", gotExpansions)
	}

	if len(page.Data) != 1 || page.Data[0].ID != "1" {
		t.Errorf("unexpected page data: %+v", page.Data)
	}
	if len(page.Includes.Users) != 1 || page.Includes.Users[0].Username != "alice" {
		t.Errorf("unexpected includes: %+v", page.Includes)
	}
}

func TestSearchUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}, []string{"tok-a"}, 10)

	_, err := client.Search(context.Background(), "bitcoin", 30, "")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("got err %v, want *UpstreamError", err)
	}
	if upstream.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want 429", upstream.Status)
	}
	if !strings.Contains(upstream.Body, "rate limited") {
		t.Errorf("Body = %q, want upstream body preserved", upstream.Body)
	}
}

func TestSearchMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}, []string{"tok-a"}, 10)

	if _, err := client.Search(context.Background(), "bitcoin", 30, ""); err == nil {
		t.Fatal("Search() = nil error for malformed body")
	}
}

func TestSearchChargesUsageOnFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, []string{"tok-a"}, 2)

	client.Search(context.Background(), "bitcoin", 30, "")
	client.Search(context.Background(), "bitcoin", 30, "")

	// Two failed attempts must exhaust the cap of 2.
	if _, err := client.pool.Next(); !errors.Is(err, ErrCredentialsExhausted) {
		t.Fatalf("got err %v, want ErrCredentialsExhausted after failed attempts", err)
	}
}

func TestSearchExhaustionSkipsNetwork(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(searchResponse))
	}, []string{"tok-a", "tok-b"}, 1)

	for i := 0; i < 2; i++ {
		if _, err := client.Search(context.Background(), "bitcoin", 30, ""); err != nil {
			t.Fatalf("Search() %d returned error: %v", i, err)
		}
	}

	_, err := client.Search(context.Background(), "bitcoin", 30, "")
	if !errors.Is(err, ErrCredentialsExhausted) {
		t.Fatalf("got err %v, want ErrCredentialsExhausted", err)
	}
	if requests != 2 {
		t.Errorf("server saw %d requests, want 2 (exhausted call must not reach the network)", requests)
	}
}
