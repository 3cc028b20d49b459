package models

import "time"

// ZipCodeEntry is one zip code in the crawl universe. The set is loaded at
// startup and drives the local-news fan-out.
type ZipCodeEntry struct {
	Code      string    `json:"code" badgerhold:"key"`
	CreatedAt time.Time `json:"created_at"`
}
