// Package cryptojobslist scrapes job postings from the CryptoJobsList
// homepage listing table.
package cryptojobslist

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/web3data/pipeline/internal/httpx"
	"github.com/web3data/pipeline/internal/models"
	"github.com/web3data/pipeline/internal/tasks"
)

const (
	defaultBaseURL = "https://cryptojobslist.com"
	sourceName     = "CryptoJobsList"

	// The site serves a reduced page to obvious bots; a browser UA keeps
	// the full listing table in the response.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"
)

// JobStore is the persistence surface the scraper needs.
type JobStore interface {
	Insert(ctx context.Context, job models.JobPosting) (bool, error)
}

// Scraper extracts job rows from the CryptoJobsList homepage.
type Scraper struct {
	client  httpx.Doer
	store   JobStore
	baseURL string
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL overrides the site URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = u }
}

// New creates a CryptoJobsList scraper.
func New(client httpx.Doer, store JobStore, opts ...Option) *Scraper {
	s := &Scraper{
		client:  client,
		store:   store,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scraper) Name() string { return "cryptojobslist" }

// Run fetches the homepage, walks the listing table, and inserts each job
// row, counting duplicates and ad rows as skipped.
func (s *Scraper) Run(ctx context.Context) (tasks.Summary, error) {
	logger := zerolog.Ctx(ctx)

	header := http.Header{}
	header.Set("User-Agent", browserUserAgent)

	resp, err := httpx.Get(ctx, s.client, s.baseURL+"/", header)
	if err != nil {
		return tasks.Summary{}, fmt.Errorf("cryptojobslist request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tasks.Summary{}, fmt.Errorf("cryptojobslist returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return tasks.Summary{}, fmt.Errorf("failed to parse cryptojobslist page: %w", err)
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return tasks.Summary{}, fmt.Errorf("invalid base URL: %w", err)
	}

	tbody := doc.Find("table.job-preview-inline-table tbody")
	if tbody.Length() == 0 {
		return tasks.Summary{}, fmt.Errorf("listing table not found; page layout may have changed")
	}

	rows := tbody.Find(`tr[role="button"]`)
	logger.Info().Int("rows", rows.Length()).Msg("Processing CryptoJobsList rows")

	var summary tasks.Summary
	collectedAt := time.Now().UTC()
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		if row.HasClass("notAJobAd") {
			return true
		}

		job, ok := extractJob(row, base)
		if !ok {
			summary.Skipped++
			return true
		}
		job.CollectedAt = collectedAt

		inserted, err := s.store.Insert(ctx, job)
		if err != nil {
			logger.Error().Err(err).Str("job_url", job.URL).Msg("Insert failed")
			summary.Skipped++
			return true
		}
		if inserted {
			summary.JobsInserted++
		} else {
			summary.Skipped++
		}
		return true
	})
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	return summary, nil
}

// extractJob pulls one posting out of a listing row. Rows without a title
// or link are rejected.
func extractJob(row *goquery.Selection, base *url.URL) (models.JobPosting, bool) {
	titleLink := row.Find("a.job-title-text").First()
	title := strings.TrimSpace(titleLink.Text())
	href, _ := titleLink.Attr("href")
	if title == "" || href == "" {
		return models.JobPosting{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return models.JobPosting{}, false
	}
	jobURL := base.ResolveReference(ref).String()

	company := strings.TrimSpace(row.Find("a.job-company-name-text").First().Text())

	var jobTags []string
	row.Find("td.job-tags span.category").Each(func(_ int, tag *goquery.Selection) {
		jobTags = append(jobTags, strings.TrimSpace(tag.Text()))
	})

	salary := extractSalary(row)
	location := extractLocation(row, salary)
	isRemote := location == "Remote" || containsFold(jobTags, "remote")
	if location == "" && isRemote {
		location = "Remote"
	}

	return models.JobPosting{
		Title:       title,
		CompanyName: company,
		Location:    location,
		SalaryRange: salary,
		Tags:        jobTags,
		Source:      sourceName,
		URL:         jobURL,
		IsRemote:    isRemote,
	}, true
}

// extractSalary returns the salary text, identified as the align-middle span
// whose enclosing div also carries the currency icon.
func extractSalary(row *goquery.Selection) string {
	var salary string
	row.Find("td span.align-middle").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		div := span.Closest("div")
		if div.Find(`svg[stroke="currentColor"]`).Length() > 0 {
			salary = strings.TrimSpace(span.Text())
			return false
		}
		return true
	})
	return salary
}

// extractLocation reads the cell left of the tags column (or the fifth cell
// when tags are absent), dropping the pin-emoji prefix. A cell that repeats
// the salary text is not a location.
func extractLocation(row *goquery.Selection, salary string) string {
	var cell *goquery.Selection
	if tagsTd := row.Find("td.job-tags").First(); tagsTd.Length() > 0 {
		cell = tagsTd.PrevFiltered("td")
	} else if tds := row.Find("td"); tds.Length() >= 5 {
		cell = tds.Eq(4)
	}
	if cell == nil || cell.Length() == 0 {
		return ""
	}

	raw := strings.TrimSpace(cell.Find("span.text-sm").First().Text())
	if raw == "" || (salary != "" && raw == salary) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(raw, "📍"))
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
