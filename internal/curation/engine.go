// Package curation asks a language model to pick the best posts of a cycle
// and validates the answer against a strict bounded schema before anything
// downstream sees it.
package curation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/tokenpulse/community-api/internal/normalize"
)

const (
	// MaxSelections is the hard upper bound enforced on the model output.
	// The prompt asks for 5-7; only the bounds are enforced since the
	// producer is non-deterministic.
	MaxSelections = 7
	minSelections = 5
)

var (
	ErrEmptyInput     = errors.New("curation: no projections to analyze")
	ErrInvalidShape   = errors.New("curation: model output does not match required shape")
	ErrEmptySelection = errors.New("curation: model selected no items")
	ErrTooMany        = errors.New("curation: model selected more items than allowed")
)

// Provider is a single-turn completion backend.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Selection struct {
	Projection normalize.Projection
	Reason     string
	Score      int
}

type Result struct {
	Selections    []Selection
	Analysis      string
	AppliedRules  []string
	Summary       string
	TotalAnalyzed int
	TotalAuthors  int
}

// Exchange captures one prompt/response pair for archival.
type Exchange struct {
	Prompt   string
	Response string
}

type Engine struct {
	provider Provider
	topic    string
}

func NewEngine(provider Provider, topic string) *Engine {
	return &Engine{provider: provider, topic: topic}
}

// rawResult mirrors the contract the prompt demands from the model.
type rawResult struct {
	SelectedItems []rawItem `json:"selectedItems"`
	Analysis      string    `json:"analysis"`
	AppliedRules  []string  `json:"appliedRules"`
	Summary       string    `json:"summary"`
}

type rawItem struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Score  int    `json:"score"`
}

// SelectBest makes exactly one model call for the given projections and
// returns the validated, joined result. Retry policy belongs to the caller;
// any violation ends the cycle here. The returned Exchange is always
// populated once the model has been called, even on validation failure.
func (e *Engine) SelectBest(ctx context.Context, projections []normalize.Projection) (*Result, *Exchange, error) {
	if len(projections) == 0 {
		return nil, nil, ErrEmptyInput
	}

	records := make([]record, 0, len(projections))
	for _, p := range projections {
		records = append(records, record{
			ID:        p.ID,
			Text:      p.Text,
			Author:    p.AuthorName,
			Handle:    p.Handle,
			Verified:  p.IsVerified,
			HasMedia:  p.PhotoURL != "" || p.VideoURL != "",
			IsRepost:  p.IsRepost,
			Likes:     p.Likes,
			Retweets:  p.Retweets,
			CreatedAt: p.Date,
		})
	}

	prompt := buildPrompt(records, e.topic)

	response, err := e.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("curation: model call failed: %w", err)
	}
	exchange := &Exchange{Prompt: prompt, Response: response}

	raw, err := parseResult(response)
	if err != nil {
		return nil, exchange, err
	}

	result := &Result{
		Analysis:      raw.Analysis,
		AppliedRules:  raw.AppliedRules,
		Summary:       raw.Summary,
		TotalAnalyzed: len(projections),
		TotalAuthors:  countAuthors(projections),
	}

	// Join selections back to their source projections. Ids the model made
	// up are dropped and logged rather than trusted.
	byID := make(map[string]normalize.Projection, len(projections))
	for _, p := range projections {
		byID[p.ID] = p
	}

	for _, item := range raw.SelectedItems {
		p, ok := byID[item.ID]
		if !ok {
			slog.Info("dropping selection with unknown id", "id", item.ID)
			continue
		}
		result.Selections = append(result.Selections, Selection{
			Projection: p,
			Reason:     item.Reason,
			Score:      clampScore(item.Score),
		})
	}

	// Highest score first; ties keep the model's ordering.
	sort.SliceStable(result.Selections, func(i, j int) bool {
		return result.Selections[i].Score > result.Selections[j].Score
	})

	return result, exchange, nil
}

// parseResult strips any markdown fencing and validates the decoded shape
// against the bounded contract.
func parseResult(response string) (*rawResult, error) {
	jsonText := extractJSON(response)

	var raw rawResult
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if raw.SelectedItems == nil {
		return nil, fmt.Errorf("%w: missing selectedItems", ErrInvalidShape)
	}
	if len(raw.SelectedItems) == 0 {
		return nil, ErrEmptySelection
	}
	if len(raw.SelectedItems) > MaxSelections {
		return nil, fmt.Errorf("%w: got %d, max %d", ErrTooMany, len(raw.SelectedItems), MaxSelections)
	}

	return &raw, nil
}

var (
	fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*?\\})\\s*\\n?```")
	bareJSON   = regexp.MustCompile(`(?s)(\{.*\})`)
)

// extractJSON pulls the JSON object out of a model response, tolerating
// markdown code fences and surrounding prose.
func extractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	if m := bareJSON.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return text
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func countAuthors(projections []normalize.Projection) int {
	seen := make(map[string]bool)
	for _, p := range projections {
		if p.Handle != "" {
			seen[p.Handle] = true
		}
	}
	return len(seen)
}
