// Package normalize flattens the nested search API payload into independent
// entity collections linked by id, and derives display-ready projections
// from them. Everything here is pure; nothing touches the network or the
// database.
package normalize

import "github.com/tokenpulse/community-api/internal/twitter"

type Author struct {
	ID             string `json:"id"`
	Handle         string `json:"handle"`
	Name           string `json:"name"`
	Verified       bool   `json:"verified"`
	AvatarURL      string `json:"avatar_url"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
	TweetCount     int    `json:"tweet_count"`
}

type Post struct {
	ID              string   `json:"id"`
	AuthorID        string   `json:"author_id"`
	Text            string   `json:"text"`
	CreatedAt       string   `json:"created_at"`
	Likes           int      `json:"likes"`
	Retweets        int      `json:"retweets"`
	Replies         int      `json:"replies"`
	Quotes          int      `json:"quotes"`
	MediaKeys       []string `json:"media_keys"`
	ReferencedTypes []string `json:"referenced_types"`
}

type Media struct {
	MediaKey string `json:"media_key"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	PostID   string `json:"post_id"`
}

type Tag struct {
	Text   string `json:"text"`
	PostID string `json:"post_id"`
}

type Mention struct {
	Handle   string `json:"handle"`
	AuthorID string `json:"author_id"`
	PostID   string `json:"post_id"`
}

type Annotation struct {
	Type        string  `json:"type"`
	Text        string  `json:"text"`
	Probability float64 `json:"probability"`
	PostID      string  `json:"post_id"`
}

// Collections holds one search page flattened into addressable entities.
// Slices are always non-nil so callers can range without nil checks.
type Collections struct {
	Authors     []Author
	Posts       []Post
	Media       []Media
	Tags        []Tag
	Mentions    []Mention
	Annotations []Annotation
}

// Normalize converts a raw search page into flat collections. Tags are
// deduplicated by exact text within the call; missing optional blocks
// default to empty collections.
func Normalize(page *twitter.SearchPage) Collections {
	out := Collections{
		Authors:     []Author{},
		Posts:       []Post{},
		Media:       []Media{},
		Tags:        []Tag{},
		Mentions:    []Mention{},
		Annotations: []Annotation{},
	}
	if page == nil {
		return out
	}

	for _, u := range page.Includes.Users {
		author := Author{
			ID:        u.ID,
			Handle:    u.Username,
			Name:      u.Name,
			Verified:  u.Verified,
			AvatarURL: u.ProfileImageURL,
		}
		if u.PublicMetrics != nil {
			author.FollowerCount = u.PublicMetrics.FollowersCount
			author.FollowingCount = u.PublicMetrics.FollowingCount
			author.TweetCount = u.PublicMetrics.TweetCount
		}
		out.Authors = append(out.Authors, author)
	}

	// media_key -> owning post, resolved while walking tweets below.
	mediaOwner := make(map[string]string)

	seenTags := make(map[string]bool)

	for _, t := range page.Data {
		post := Post{
			ID:              t.ID,
			AuthorID:        t.AuthorID,
			Text:            t.Text,
			CreatedAt:       t.CreatedAt,
			MediaKeys:       []string{},
			ReferencedTypes: []string{},
		}
		if t.PublicMetrics != nil {
			post.Likes = t.PublicMetrics.LikeCount
			post.Retweets = t.PublicMetrics.RetweetCount
			post.Replies = t.PublicMetrics.ReplyCount
			post.Quotes = t.PublicMetrics.QuoteCount
		}
		if t.Attachments != nil {
			for _, key := range t.Attachments.MediaKeys {
				post.MediaKeys = append(post.MediaKeys, key)
				mediaOwner[key] = t.ID
			}
		}
		for _, ref := range t.ReferencedTweets {
			post.ReferencedTypes = append(post.ReferencedTypes, ref.Type)
		}
		out.Posts = append(out.Posts, post)

		if t.Entities == nil {
			continue
		}
		for _, h := range t.Entities.Hashtags {
			if seenTags[h.Tag] {
				continue
			}
			seenTags[h.Tag] = true
			out.Tags = append(out.Tags, Tag{Text: h.Tag, PostID: t.ID})
		}
		for _, m := range t.Entities.Mentions {
			out.Mentions = append(out.Mentions, Mention{
				Handle:   m.Username,
				AuthorID: m.ID,
				PostID:   t.ID,
			})
		}
		for _, a := range t.Entities.Annotations {
			out.Annotations = append(out.Annotations, Annotation{
				Type:        a.Type,
				Text:        a.NormalizedText,
				Probability: a.Probability,
				PostID:      t.ID,
			})
		}
	}

	for _, m := range page.Includes.Media {
		out.Media = append(out.Media, Media{
			MediaKey: m.MediaKey,
			Type:     m.Type,
			URL:      mediaURL(m),
			PostID:   mediaOwner[m.MediaKey],
		})
	}

	return out
}

// mediaURL picks the direct URL when present, falling back to the preview
// image for videos and gifs, which only expose one.
func mediaURL(m twitter.Media) string {
	if m.URL != "" {
		return m.URL
	}
	return m.PreviewImageURL
}

// AuthorIndex builds an id -> author map for projection lookups.
func AuthorIndex(authors []Author) map[string]Author {
	idx := make(map[string]Author, len(authors))
	for _, a := range authors {
		idx[a.ID] = a
	}
	return idx
}

// MediaIndex groups media rows by owning post id.
func MediaIndex(media []Media) map[string][]Media {
	idx := make(map[string][]Media)
	for _, m := range media {
		idx[m.PostID] = append(idx[m.PostID], m)
	}
	return idx
}
