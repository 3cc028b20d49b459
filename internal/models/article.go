package models

import (
	"fmt"
	"strings"
	"time"
)

// Record status lifecycle. New records are inserted as "new"; downstream
// consumers move them to filtered/scored.
const (
	StatusNew      = "new"
	StatusFiltered = "filtered"
	StatusScored   = "scored"
)

// DefaultLanguage is assigned when a source does not report one.
const DefaultLanguage = "en"

// RawArticle is the pre-persistence article shape produced by a crawl
// strategy. It lives only within one ingestion run.
type RawArticle struct {
	Source         string   `json:"source"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	PublishDate    string   `json:"publish_date,omitempty"` // RFC3339 after normalization
	Content        string   `json:"content,omitempty"`
	ContentSummary string   `json:"content_summary,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	ZipCode        string   `json:"zip_code,omitempty"`
	City           string   `json:"city,omitempty"`
}

// NewsRecord is the persisted article row. ID is assigned by the store on
// insert and is the basis for all downstream joins.
type NewsRecord struct {
	ID          uint64 `json:"id" badgerhold:"key"`
	SourceID    string `json:"source_id" badgerhold:"index"`
	Source      string `json:"source"`
	City        string `json:"city"`
	ZipCode     string `json:"zip_code" badgerhold:"index"`
	Title       string `json:"title"`
	Content     string `json:"content,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
	URL         string `json:"url"`
	// CanonicalURL is the dedup key derived from URL at insert time.
	CanonicalURL string    `json:"-" badgerhold:"index"`
	Language     string    `json:"language"`
	RawCategory  string    `json:"raw_category,omitempty"`
	Status       string    `json:"status"`
	CrawlTime    time.Time `json:"crawl_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the fields required before a record may be persisted.
func (r *NewsRecord) Validate() error {
	if r.SourceID == "" {
		return fmt.Errorf("source_id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required and cannot be empty")
	}
	if r.URL == "" {
		return fmt.Errorf("url is required")
	}
	if !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
		return fmt.Errorf("invalid url format: %s", r.URL)
	}
	return nil
}
