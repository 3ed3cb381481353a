package normalize

const profileBaseURL = "https://x.com/"

// Projection is the flat, display-ready view of one post. It is recomputed
// every cycle and never persisted on its own; only the curated subset is
// denormalized into the store.
type Projection struct {
	ID              string `json:"id"`
	AuthorAvatarURL string `json:"author_avatar_url"`
	AuthorName      string `json:"author_name"`
	AuthorHandleURL string `json:"author_handle_url"`
	IsVerified      bool   `json:"is_verified"`
	Text            string `json:"text"`
	PhotoURL        string `json:"photo_url"`
	VideoURL        string `json:"video_url"`
	Permalink       string `json:"permalink"`
	Date            string `json:"date"`
	Handle          string `json:"handle"`
	Likes           int    `json:"likes"`
	Retweets        int    `json:"retweets"`
	IsRepost        bool   `json:"is_repost"`
}

// Project derives the display record for one post. A missing author yields
// empty author fields rather than an error: dropping the post for an
// upstream inclusion gap is a rendering decision, not a pipeline one, and
// the policy is confined to this boundary. At most one photo and one
// video/gif are kept, first match by type. Derived URLs stay empty when the
// handle is empty so the feed never carries malformed links.
func Project(post Post, authors map[string]Author, media map[string][]Media) Projection {
	p := Projection{
		ID:       post.ID,
		Text:     post.Text,
		Date:     post.CreatedAt,
		Likes:    post.Likes,
		Retweets: post.Retweets,
	}

	for _, ref := range post.ReferencedTypes {
		if ref == "retweeted" {
			p.IsRepost = true
			break
		}
	}

	if author, ok := authors[post.AuthorID]; ok {
		p.AuthorAvatarURL = author.AvatarURL
		p.AuthorName = author.Name
		p.IsVerified = author.Verified
		p.Handle = author.Handle
		if author.Handle != "" {
			p.AuthorHandleURL = profileBaseURL + author.Handle
			p.Permalink = profileBaseURL + author.Handle + "/status/" + post.ID
		}
	}

	for _, m := range media[post.ID] {
		switch m.Type {
		case "photo":
			if p.PhotoURL == "" {
				p.PhotoURL = m.URL
			}
		case "video", "animated_gif":
			if p.VideoURL == "" {
				p.VideoURL = m.URL
			}
		}
	}

	return p
}

// ProjectAll maps every post in the collections through Project.
func ProjectAll(c Collections) []Projection {
	authors := AuthorIndex(c.Authors)
	media := MediaIndex(c.Media)

	projections := make([]Projection, 0, len(c.Posts))
	for _, post := range c.Posts {
		projections = append(projections, Project(post, authors, media))
	}
	return projections
}
