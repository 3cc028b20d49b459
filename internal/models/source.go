package models

import (
	"fmt"
	"time"
)

// ContentScope constants. The scope decides how a source is crawled:
// real_estate and housing sources crawl once, local_business sources crawl
// once per known zip code.
const (
	ScopeRealEstate    = "real_estate"
	ScopeHousing       = "housing"
	ScopeLocalBusiness = "local_business"
)

// SourceConfig represents one external news site registered for harvesting.
// Sources are owned by an external system; the pipeline only reads them.
type SourceConfig struct {
	ID              string    `json:"id" badgerhold:"key"`
	SourceName      string    `json:"source_name"`
	ContentScope    string    `json:"content_scope"`
	City            string    `json:"city,omitempty"`
	UpdateFrequency string    `json:"update_frequency,omitempty"` // standard 5-field cron expression
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NeedsZipCode reports whether this source's crawl is fanned out per zip code.
func (s *SourceConfig) NeedsZipCode() bool {
	return s.ContentScope == ScopeLocalBusiness
}

// TaskType returns the task log type for a crawl of this source.
func (s *SourceConfig) TaskType() string {
	if s.NeedsZipCode() {
		return TaskTypeLocalNews
	}
	return TaskTypeRealEstate
}

// Validate validates the source configuration.
func (s *SourceConfig) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("source ID is required")
	}
	if s.SourceName == "" {
		return fmt.Errorf("source name is required")
	}

	validScopes := map[string]bool{
		ScopeRealEstate:    true,
		ScopeHousing:       true,
		ScopeLocalBusiness: true,
	}
	if !validScopes[s.ContentScope] {
		return fmt.Errorf("invalid content scope: %s", s.ContentScope)
	}

	return nil
}
