// Package web3career collects job postings from the Web3.Career API.
package web3career

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
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
	defaultBaseURL = "https://web3.career/api/v1"
	sourceName     = "Web3.Career"
	fetchLimit     = 100
)

// JobStore is the persistence surface the collector needs.
type JobStore interface {
	Insert(ctx context.Context, job models.JobPosting) (bool, error)
}

// Collector fetches job postings from the Web3.Career API and stores them.
type Collector struct {
	client  httpx.Doer
	store   JobStore
	apiKey  string
	baseURL string
}

// Option configures a Collector.
type Option func(*Collector)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Collector) { c.baseURL = u }
}

// New creates a Web3.Career collector.
func New(client httpx.Doer, store JobStore, apiKey string, opts ...Option) *Collector {
	c := &Collector{
		client:  client,
		store:   store,
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Name() string { return "web3career" }

// apiJob mirrors one entry of the Web3.Career jobs array.
type apiJob struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Company     string      `json:"company"`
	Location    string      `json:"location"`
	Country     string      `json:"country"`
	City        string      `json:"city"`
	ApplyURL    string      `json:"apply_url"`
	Tags        []string    `json:"tags"`
	Description string      `json:"description"`
	DateEpoch   int64       `json:"date_epoch"`
	SalaryRange string      `json:"salary_range"`
}

// Run fetches up to 100 postings and inserts them, counting duplicates as
// skipped. Entries without a title or apply URL are skipped outright.
func (c *Collector) Run(ctx context.Context) (tasks.Summary, error) {
	logger := zerolog.Ctx(ctx)

	query := url.Values{
		"token":            {c.apiKey},
		"limit":            {fmt.Sprint(fetchLimit)},
		"show_description": {"true"},
	}

	resp, err := httpx.Get(ctx, c.client, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return tasks.Summary{}, fmt.Errorf("web3.career request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tasks.Summary{}, fmt.Errorf("web3.career returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tasks.Summary{}, fmt.Errorf("failed to read web3.career response: %w", err)
	}

	entries, err := parseJobs(body)
	if err != nil {
		return tasks.Summary{}, err
	}
	logger.Info().Int("entries", len(entries)).Msg("Processing Web3.Career job entries")

	var summary tasks.Summary
	collectedAt := time.Now().UTC()
	for _, raw := range entries {
		var entry apiJob
		if err := json.Unmarshal(raw, &entry); err != nil {
			logger.Warn().Err(err).Msg("Skipping malformed job entry")
			summary.Skipped++
			continue
		}

		if entry.Title == "" || entry.ApplyURL == "" {
			logger.Debug().Str("external_id", entry.ID.String()).Msg("Skipping entry without title or apply URL")
			summary.Skipped++
			continue
		}

		inserted, err := c.store.Insert(ctx, models.JobPosting{
			Title:       entry.Title,
			CompanyName: entry.Company,
			Location:    entry.Location,
			SalaryRange: entry.SalaryRange,
			Tags:        entry.Tags,
			Source:      sourceName,
			URL:         entry.ApplyURL,
			Description: entry.Description,
			ExternalID:  entry.ID.String(),
			IsRemote:    isRemote(entry.Tags),
			PostedEpoch: entry.DateEpoch,
			RawResponse: string(raw),
			CollectedAt: collectedAt,
		})
		if err != nil {
			logger.Error().Err(err).Str("external_id", entry.ID.String()).Msg("Insert failed")
			summary.Skipped++
			continue
		}
		if inserted {
			summary.JobsInserted++
		} else {
			summary.Skipped++
		}
	}

	return summary, nil
}

// parseJobs extracts the jobs array from the API's positional response
// format: a bare JSON array whose third element holds the job objects.
func parseJobs(body []byte) ([]json.RawMessage, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, fmt.Errorf("failed to decode web3.career response: %w", err)
	}
	if len(outer) < 3 {
		return nil, fmt.Errorf("unexpected web3.career response shape: %d top-level elements", len(outer))
	}

	var jobs []json.RawMessage
	if err := json.Unmarshal(outer[2], &jobs); err != nil {
		return nil, fmt.Errorf("failed to decode web3.career jobs array: %w", err)
	}
	return jobs, nil
}

func isRemote(tags []string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, "remote") {
			return true
		}
	}
	return false
}
