package curation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// record is the analysis-only view of a projection that gets serialized into
// the prompt. Engagement numbers ride along when present but the model is
// not told to require them.
type record struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	Handle    string `json:"handle"`
	Verified  bool   `json:"verified"`
	HasMedia  bool   `json:"has_media"`
	IsRepost  bool   `json:"is_repost"`
	Likes     int    `json:"likes,omitempty"`
	Retweets  int    `json:"retweets,omitempty"`
	CreatedAt string `json:"created_at"`
}

// buildPrompt composes the single fixed instruction plus the serialized
// records. The rule set and the output contract never vary between cycles.
func buildPrompt(records []record, topic string) string {
	var sb strings.Builder

	sb.WriteString("You are curating a community feed of social posts about ")
	sb.WriteString(topic)
	sb.WriteString(".\n\n")

	sb.WriteString("## Selection Rules\n\n")
	sb.WriteString("1. Topical relevance: the post must be about the topic.\n")
	sb.WriteString("2. Originality: exclude reposts unless exceptional.\n")
	sb.WriteString("3. Prefer posts with higher engagement when numbers are available.\n")
	sb.WriteString("4. Author diversity: avoid picking multiple posts from the same author.\n")
	sb.WriteString("5. Prefer recent posts.\n")
	sb.WriteString("6. Reject spam, engagement bait, and posts under 30 characters.\n")
	sb.WriteString(fmt.Sprintf("7. Select between %d and %d posts.\n", minSelections, MaxSelections))
	sb.WriteString("8. Never select the same id twice.\n\n")

	sb.WriteString("## Posts\n\n")
	for i, r := range records {
		line, _ := json.Marshal(r)
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, string(line)))
	}

	sb.WriteString("\n## Output\n\n")
	sb.WriteString("IMPORTANT: Respond with ONLY a valid JSON object. No markdown, no code blocks, no explanation.\n\n")
	sb.WriteString("Required shape:\n")
	sb.WriteString(`{"selectedItems": [{"id": "...", "reason": "...", "score": 0}], "analysis": "...", "appliedRules": ["..."], "summary": "..."}`)
	sb.WriteString("\n\nscore is an integer from 0 to 100. reason is one sentence explaining the pick.\n")

	return sb.String()
}
