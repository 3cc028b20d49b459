package interfaces

import (
	"context"

	"github.com/rstatelabs/playnews/internal/models"
)

// RecentQuery filters a QueryRecent call. Zero values mean "no filter".
type RecentQuery struct {
	Days     int
	ZipCode  string
	SourceID string
	Status   string
	Limit    int
}

// NewsStorage persists harvested news records.
type NewsStorage interface {
	// InsertWithDedup inserts records whose canonical URL is not already
	// present, assigns IDs, and returns the newly persisted subset. On bulk
	// failure it degrades to per-record inserts; records that still fail are
	// spooled to a recovery file, never silently discarded.
	InsertWithDedup(ctx context.Context, records []*models.NewsRecord) (int, []*models.NewsRecord, error)

	// QueryRecent returns records whose publish date falls within the last
	// opts.Days days, newest first.
	QueryRecent(ctx context.Context, opts RecentQuery) ([]*models.NewsRecord, error)
}

// SourceStorage provides read access to the externally managed source
// configuration and zip code feeds.
type SourceStorage interface {
	ListActiveSources(ctx context.Context) ([]*models.SourceConfig, error)
	GetSource(ctx context.Context, id string) (*models.SourceConfig, error)
	SaveSource(ctx context.Context, source *models.SourceConfig) error

	// ListZipCodes returns the distinct non-empty zip codes known to the
	// system, trimmed, in first-seen order.
	ListZipCodes(ctx context.Context) ([]string, error)
	SaveZipCodes(ctx context.Context, zipCodes []string) error
}

// TaskLogStorage records crawl task lifecycles. Entries are write-only from
// the pipeline's point of view.
type TaskLogStorage interface {
	LogTask(ctx context.Context, entry *models.TaskLog) (string, error)
	UpdateTask(ctx context.Context, id, status string, articlesCount int, errorMessage string) error
}
