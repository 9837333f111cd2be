package models

import "time"

// SocialPost is one social-media document destined for the Mongo
// social_media_posts collection. (Source, SourceSpecificID) is unique
// across platforms.
type SocialPost struct {
	Source           string            `bson:"source"`             // "reddit" or "twitter"
	SourceMethod     string            `bson:"source_method"`      // e.g. "subreddit_new", "search", "search_recent"
	SourceQuery      string            `bson:"source_query"`       // subreddit name, keyword, or full query
	SourceSpecificID string            `bson:"source_specific_id"` // platform-native post ID
	Title            string            `bson:"title,omitempty"`
	Text             string            `bson:"text"`
	Author           string            `bson:"author,omitempty"`
	AuthorID         string            `bson:"author_id,omitempty"`
	Subreddit        string            `bson:"subreddit,omitempty"`
	URL              string            `bson:"url,omitempty"`
	Language         string            `bson:"language,omitempty"`
	Score            int               `bson:"score,omitempty"`
	UpvoteRatio      float64           `bson:"upvote_ratio,omitempty"`
	NumComments      int               `bson:"num_comments,omitempty"`
	PublicMetrics    map[string]int    `bson:"public_metrics,omitempty"`
	CreatedAt        time.Time         `bson:"created_utc"`
	CollectedAt      time.Time         `bson:"collected_at"`
	Sentiment        *Sentiment        `bson:"sentiment,omitempty"`
	SentimentAt      *time.Time        `bson:"sentiment_analyzed_at,omitempty"`
}

// Sentiment holds VADER polarity scores for a post's text.
type Sentiment struct {
	Negative float64 `bson:"neg"`
	Neutral  float64 `bson:"neu"`
	Positive float64 `bson:"pos"`
	Compound float64 `bson:"compound"`
}
