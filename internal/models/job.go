package models

import "time"

// JobPosting is one job listing destined for the Postgres job_postings
// table. URL is the dedup key: inserts conflict on job_url and are dropped.
type JobPosting struct {
	Title       string    `json:"title"`
	CompanyName string    `json:"company_name"`
	Location    string    `json:"location"`
	SalaryRange string    `json:"salary_range,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Source      string    `json:"source"`       // "Web3.Career" or "CryptoJobsList"
	URL         string    `json:"job_url"`      // unique per posting
	Description string    `json:"description,omitempty"`
	ExternalID  string    `json:"external_id,omitempty"` // upstream ID, if the source has one
	IsRemote    bool      `json:"is_remote"`
	PostedEpoch int64     `json:"date_posted_epoch,omitempty"`
	RawResponse string    `json:"raw_api_response,omitempty"` // original API entry as JSON
	CollectedAt time.Time `json:"collected_at"`
}
