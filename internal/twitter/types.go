package twitter

// Typed view of the Twitter API v2 recent search response. Only the fields
// the pipeline reads are declared; everything else is dropped at decode time.

type SearchPage struct {
	Data     []Tweet  `json:"data"`
	Includes Includes `json:"includes"`
	Meta     Meta     `json:"meta"`
}

type Includes struct {
	Users []User  `json:"users"`
	Media []Media `json:"media"`
}

type Meta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token,omitempty"`
}

type Tweet struct {
	ID               string            `json:"id"`
	AuthorID         string            `json:"author_id"`
	Text             string            `json:"text"`
	CreatedAt        string            `json:"created_at"`
	Attachments      *Attachments      `json:"attachments,omitempty"`
	Entities         *Entities         `json:"entities,omitempty"`
	PublicMetrics    *TweetMetrics     `json:"public_metrics,omitempty"`
	ReferencedTweets []ReferencedTweet `json:"referenced_tweets,omitempty"`
}

type Attachments struct {
	MediaKeys []string `json:"media_keys"`
}

type ReferencedTweet struct {
	Type string `json:"type"` // retweeted, quoted, replied_to
	ID   string `json:"id"`
}

type TweetMetrics struct {
	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`
}

type Entities struct {
	Hashtags    []HashtagEntity    `json:"hashtags,omitempty"`
	Mentions    []MentionEntity    `json:"mentions,omitempty"`
	Annotations []AnnotationEntity `json:"annotations,omitempty"`
}

type HashtagEntity struct {
	Tag string `json:"tag"`
}

type MentionEntity struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

type AnnotationEntity struct {
	Type           string  `json:"type"`
	NormalizedText string  `json:"normalized_text"`
	Probability    float64 `json:"probability"`
}

type User struct {
	ID              string       `json:"id"`
	Username        string       `json:"username"`
	Name            string       `json:"name"`
	Verified        bool         `json:"verified"`
	ProfileImageURL string       `json:"profile_image_url"`
	PublicMetrics   *UserMetrics `json:"public_metrics,omitempty"`
}

type UserMetrics struct {
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	TweetCount     int `json:"tweet_count"`
}

type Media struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"` // photo, video, animated_gif
	URL             string `json:"url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
}
