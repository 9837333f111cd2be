// Package reddit collects new and keyword-matched submissions from a fixed
// set of web3 subreddits.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/web3data/pipeline/internal/httpx"
	"github.com/web3data/pipeline/internal/models"
	"github.com/web3data/pipeline/internal/tasks"
)

const (
	defaultBaseURL = "https://oauth.reddit.com"
	sourceName     = "reddit"
	limitPerSource = 15
)

var (
	targetSubreddits = []string{"ethereum", "CryptoCurrency", "web3"}
	searchKeywords   = []string{
		"web3 developer salary",
		"Coinbase hiring",
		"blockchain skill demand",
		"remote web3 role",
	}
)

// PostStore is the persistence surface the collector needs.
type PostStore interface {
	InsertMany(ctx context.Context, posts []models.SocialPost) (inserted, skipped int, err error)
}

// Collector fetches submissions from the Reddit listing and search APIs.
type Collector struct {
	client  httpx.Doer
	store   PostStore
	baseURL string
	pause   time.Duration
}

// Option configures a Collector.
type Option func(*Collector)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Collector) { c.baseURL = u }
}

// WithPause overrides the politeness delay between requests.
func WithPause(d time.Duration) Option {
	return func(c *Collector) { c.pause = d }
}

// New creates a Reddit collector. The client must already be authenticated;
// see NewAPIClient.
func New(client httpx.Doer, store PostStore, opts ...Option) *Collector {
	c := &Collector{
		client:  client,
		store:   store,
		baseURL: defaultBaseURL,
		pause:   time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Name() string { return "reddit" }

// listing mirrors Reddit's JSON envelope for both /new and /search.
type listing struct {
	Data struct {
		Children []struct {
			Data submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type submission struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// Run fetches the newest submissions per subreddit, then keyword searches
// over the combined subreddits, inserting batches as it goes. Duplicates
// are absorbed by the store's unique index.
func (c *Collector) Run(ctx context.Context) (tasks.Summary, error) {
	logger := zerolog.Ctx(ctx)
	var summary tasks.Summary

	for _, sub := range targetSubreddits {
		subs, err := c.fetchListing(ctx, fmt.Sprintf("%s/r/%s/new?limit=%d", c.baseURL, sub, limitPerSource))
		if err != nil {
			return summary, fmt.Errorf("subreddit r/%s: %w", sub, err)
		}

		inserted, skipped, err := c.insertBatch(ctx, subs, "subreddit_new", sub)
		if err != nil {
			return summary, err
		}
		summary.PostsInserted += inserted
		summary.Skipped += skipped
		logger.Info().
			Str("subreddit", sub).
			Int("processed", len(subs)).
			Int("inserted", inserted).
			Int("skipped", skipped).
			Msg("Collected new submissions")

		if err := c.sleep(ctx, c.pause); err != nil {
			return summary, err
		}
	}

	scope := strings.Join(targetSubreddits, "+")
	for _, keyword := range searchKeywords {
		query := url.Values{
			"q":           {keyword},
			"restrict_sr": {"1"},
			"sort":        {"new"},
			"limit":       {fmt.Sprint(limitPerSource)},
		}
		subs, err := c.fetchListing(ctx, fmt.Sprintf("%s/r/%s/search?%s", c.baseURL, scope, query.Encode()))
		if err != nil {
			return summary, fmt.Errorf("search %q: %w", keyword, err)
		}

		// Search results can repeat within a batch; dedupe before insert
		// so the unique index only has to catch cross-run duplicates.
		seen := make(map[string]bool, len(subs))
		unique := subs[:0]
		for _, s := range subs {
			if !seen[s.ID] {
				seen[s.ID] = true
				unique = append(unique, s)
			}
		}

		inserted, skipped, err := c.insertBatch(ctx, unique, "search", keyword)
		if err != nil {
			return summary, err
		}
		summary.PostsInserted += inserted
		summary.Skipped += skipped + len(subs) - len(unique)
		logger.Info().
			Str("keyword", keyword).
			Int("processed", len(subs)).
			Int("inserted", inserted).
			Msg("Collected search results")

		if err := c.sleep(ctx, 2*c.pause); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (c *Collector) fetchListing(ctx context.Context, endpoint string) ([]submission, error) {
	resp, err := httpx.Get(ctx, c.client, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned status %d", resp.StatusCode)
	}

	var page listing
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode reddit listing: %w", err)
	}

	subs := make([]submission, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		subs = append(subs, child.Data)
	}
	return subs, nil
}

func (c *Collector) insertBatch(ctx context.Context, subs []submission, method, query string) (int, int, error) {
	if len(subs) == 0 {
		return 0, 0, nil
	}

	collectedAt := time.Now().UTC()
	posts := make([]models.SocialPost, 0, len(subs))
	for _, s := range subs {
		author := s.Author
		if author == "" {
			author = "[deleted]"
		}
		posts = append(posts, models.SocialPost{
			Source:           sourceName,
			SourceMethod:     method,
			SourceQuery:      query,
			SourceSpecificID: s.ID,
			Title:            s.Title,
			Text:             s.Selftext,
			Author:           author,
			Subreddit:        s.Subreddit,
			URL:              "https://www.reddit.com" + s.Permalink,
			Score:            s.Score,
			UpvoteRatio:      s.UpvoteRatio,
			NumComments:      s.NumComments,
			CreatedAt:        time.Unix(int64(s.CreatedUTC), 0).UTC(),
			CollectedAt:      collectedAt,
		})
	}

	return c.store.InsertMany(ctx, posts)
}

func (c *Collector) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
