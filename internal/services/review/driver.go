package review

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/interfaces"
	"github.com/rstatelabs/playnews/internal/models"
)

// emptyZipGroup holds records with no zip code so they still get reviewed.
const emptyZipGroup = "__empty__"

// Driver walks newly persisted records through the review workflow, one
// zip-code group at a time. Within a group records are submitted in order
// and the group stops at the first approval; one approved story per area
// is enough.
type Driver struct {
	client interfaces.ReviewClient
	logger arbor.ILogger
}

func NewDriver(client interfaces.ReviewClient, logger arbor.ILogger) *Driver {
	return &Driver{client: client, logger: logger}
}

// GroupByZipCode buckets records by zip code, keeping insertion order
// within each group.
func GroupByZipCode(records []*models.NewsRecord) map[string][]*models.NewsRecord {
	groups := make(map[string][]*models.NewsRecord)
	for _, rec := range records {
		key := strings.TrimSpace(rec.ZipCode)
		if key == "" {
			key = emptyZipGroup
		}
		groups[key] = append(groups[key], rec)
	}
	return groups
}

// ProcessRecords reviews all groups and returns the run totals.
func (d *Driver) ProcessRecords(ctx context.Context, records []*models.NewsRecord) models.ReviewStats {
	var stats models.ReviewStats
	if len(records) == 0 {
		d.logger.Info().Msg("No records to review")
		return stats
	}

	groups := GroupByZipCode(records)
	d.logger.Info().Int("groups", len(groups)).Int("records", len(records)).Msg("Starting review run")

	for zip, group := range groups {
		if err := ctx.Err(); err != nil {
			d.logger.Warn().Err(err).Msg("Review run cancelled")
			return stats
		}
		d.reviewGroup(ctx, zip, group, &stats)
	}

	d.logger.Info().
		Int("processed", stats.Processed).
		Int("approved", stats.Approved).
		Int("failed", stats.Failed).
		Msg("Review run complete")
	return stats
}

func (d *Driver) reviewGroup(ctx context.Context, zip string, records []*models.NewsRecord, stats *models.ReviewStats) {
	display := zip
	if zip == emptyZipGroup {
		display = "(none)"
	}
	d.logger.Info().Str("zip", display).Int("records", len(records)).Msg("Reviewing zip group")

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return
		}
		if rec.ID == 0 {
			d.logger.Warn().Str("zip", display).Str("title", rec.Title).Msg("Record has no ID, skipping review")
			continue
		}

		resp := d.client.SubmitForReview(ctx, rec.ID)
		stats.Processed++

		if resp.IsApproved() {
			stats.Approved++
			d.logger.Info().
				Str("zip", display).
				Int64("record_id", int64(rec.ID)).
				Int("remaining", len(records)-i-1).
				Msg("Record approved, skipping rest of group")
			return
		}

		if resp.Error != "" {
			stats.Failed++
			d.logger.Warn().Str("zip", display).Int64("record_id", int64(rec.ID)).Str("error", resp.Error).Msg("Review call failed")
		} else {
			d.logger.Debug().Str("zip", display).Int64("record_id", int64(rec.ID)).Msg("Record not approved")
		}
	}

	d.logger.Info().Str("zip", display).Msg("Zip group finished with no approval")
}
