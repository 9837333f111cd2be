// Package twitter collects recent tweets matching a fixed set of web3
// hiring queries via the v2 search API.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/web3data/pipeline/internal/httpx"
	"github.com/web3data/pipeline/internal/models"
	"github.com/web3data/pipeline/internal/tasks"
)

const (
	defaultBaseURL = "https://api.twitter.com"
	searchPath     = "/2/tweets/search/recent"
	sourceName     = "twitter"
	limitPerQuery  = 10
)

var searchQueries = []string{
	"(#Web3Jobs OR #CryptoHiring OR #BlockchainCareers) -is:retweet lang:en",
	`("web3 developer salary" OR "blockchain developer pay") -is:retweet lang:en`,
	"(from:Coinbase OR from:binance OR from:ethereum) (hiring OR jobs OR career)",
	"#DeFiJobs -is:retweet lang:en",
}

// PostStore is the persistence surface the collector needs.
type PostStore interface {
	Exists(ctx context.Context, source, sourceSpecificID string) (bool, error)
	InsertMany(ctx context.Context, posts []models.SocialPost) (inserted, skipped int, err error)
}

// Collector runs the fixed search queries against the recent-search API.
// Rate-limit responses are retried with backoff by the HTTP layer.
type Collector struct {
	client      httpx.Doer
	store       PostStore
	bearerToken string
	baseURL     string
	pause       time.Duration
}

// Option configures a Collector.
type Option func(*Collector)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Collector) { c.baseURL = u }
}

// WithPause overrides the politeness delay between queries.
func WithPause(d time.Duration) Option {
	return func(c *Collector) { c.pause = d }
}

// New creates a Twitter collector.
func New(client httpx.Doer, store PostStore, bearerToken string, opts ...Option) *Collector {
	c := &Collector{
		client:      client,
		store:       store,
		bearerToken: bearerToken,
		baseURL:     defaultBaseURL,
		pause:       time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Name() string { return "twitter" }

type searchResponse struct {
	Data   []tweet    `json:"data"`
	Errors []apiError `json:"errors"`
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type tweet struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	AuthorID      string          `json:"author_id"`
	Lang          string          `json:"lang"`
	CreatedAt     time.Time       `json:"created_at"`
	PublicMetrics map[string]int  `json:"public_metrics"`
	Geo           json.RawMessage `json:"geo"`
}

// Run executes each search query in turn, deduplicating against the store
// before the batch insert.
func (c *Collector) Run(ctx context.Context) (tasks.Summary, error) {
	logger := zerolog.Ctx(ctx)
	var summary tasks.Summary

	for _, query := range searchQueries {
		tweets, apiErrors, err := c.search(ctx, query)
		if err != nil {
			return summary, fmt.Errorf("query %q: %w", query, err)
		}
		for _, apiErr := range apiErrors {
			logger.Warn().
				Str("title", apiErr.Title).
				Str("detail", apiErr.Detail).
				Msg("Twitter API reported a partial error")
		}
		if len(tweets) == 0 {
			logger.Info().Str("query", query).Msg("No recent tweets matched")
			continue
		}

		collectedAt := time.Now().UTC()
		var batch []models.SocialPost
		for _, tw := range tweets {
			exists, err := c.store.Exists(ctx, sourceName, tw.ID)
			if err != nil {
				return summary, err
			}
			if exists {
				summary.Skipped++
				continue
			}
			batch = append(batch, models.SocialPost{
				Source:           sourceName,
				SourceMethod:     "search_recent",
				SourceQuery:      query,
				SourceSpecificID: tw.ID,
				Text:             tw.Text,
				AuthorID:         tw.AuthorID,
				Language:         tw.Lang,
				PublicMetrics:    tw.PublicMetrics,
				CreatedAt:        tw.CreatedAt,
				CollectedAt:      collectedAt,
			})
		}

		if len(batch) > 0 {
			inserted, skipped, err := c.store.InsertMany(ctx, batch)
			if err != nil {
				return summary, err
			}
			summary.PostsInserted += inserted
			summary.Skipped += skipped
		}
		logger.Info().
			Str("query", query).
			Int("received", len(tweets)).
			Int("inserted", len(batch)).
			Msg("Processed search query")

		if err := c.sleep(ctx); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (c *Collector) search(ctx context.Context, query string) ([]tweet, []apiError, error) {
	params := url.Values{
		"query":        {query},
		"max_results":  {fmt.Sprint(limitPerQuery)},
		"tweet.fields": {"created_at,public_metrics,author_id,lang,geo"},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := httpx.Get(ctx, c.client, c.baseURL+searchPath+"?"+params.Encode(), header)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("twitter returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil, fmt.Errorf("failed to decode twitter response: %w", err)
	}
	return result.Data, result.Errors, nil
}

func (c *Collector) sleep(ctx context.Context) error {
	if c.pause <= 0 {
		return nil
	}
	select {
	case <-time.After(c.pause):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
