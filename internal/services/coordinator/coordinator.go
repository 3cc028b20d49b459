package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/common"
	"github.com/rstatelabs/playnews/internal/interfaces"
	"github.com/rstatelabs/playnews/internal/models"
	"github.com/rstatelabs/playnews/internal/services/export"
	"github.com/rstatelabs/playnews/internal/services/normalizer"
	"github.com/rstatelabs/playnews/internal/services/review"
	"github.com/rstatelabs/playnews/internal/services/scraper"
)

// StrategyResolver maps a source configuration to its crawl strategy.
type StrategyResolver interface {
	Lookup(source *models.SourceConfig) (scraper.Strategy, error)
}

// Enricher fills article bodies after listing extraction.
type Enricher interface {
	EnrichArticles(ctx context.Context, articles []*models.RawArticle)
}

// Coordinator drives the whole harvest: load sources and zip codes, crawl
// each source, normalize and enrich, dedup, persist, run the review
// workflow over what was inserted, and export a JSON snapshot.
type Coordinator struct {
	sources  interfaces.SourceStorage
	news     interfaces.NewsStorage
	tasks    interfaces.TaskLogStorage
	registry StrategyResolver
	cleaner  *normalizer.Normalizer
	enricher Enricher
	reviewer *review.Driver
	notifier interfaces.Notifier
	exporter *export.Exporter
	cfg      *common.ScraperConfig
	logger   arbor.ILogger
}

// Deps collects the coordinator's collaborators.
type Deps struct {
	Sources  interfaces.SourceStorage
	News     interfaces.NewsStorage
	Tasks    interfaces.TaskLogStorage
	Registry StrategyResolver
	Cleaner  *normalizer.Normalizer
	Enricher Enricher
	Reviewer *review.Driver
	Notifier interfaces.Notifier
	Exporter *export.Exporter
	Config   *common.ScraperConfig
	Logger   arbor.ILogger
}

func New(deps Deps) *Coordinator {
	return &Coordinator{
		sources:  deps.Sources,
		news:     deps.News,
		tasks:    deps.Tasks,
		registry: deps.Registry,
		cleaner:  deps.Cleaner,
		enricher: deps.Enricher,
		reviewer: deps.Reviewer,
		notifier: deps.Notifier,
		exporter: deps.Exporter,
		cfg:      deps.Config,
		logger:   deps.Logger,
	}
}

// Run executes one full harvest. When sourceID is non-empty only that
// source is crawled; the scheduler uses this for per-source jobs.
func (c *Coordinator) Run(ctx context.Context, sourceID string) error {
	c.logger.Info().Str("source_id", sourceID).Msg("Starting harvest run")

	sources, err := c.sources.ListActiveSources(ctx)
	if err != nil {
		c.notifier.NotifyFailure(ctx, models.TaskTypeFullRun, err.Error(), "", "")
		return fmt.Errorf("failed to load sources: %w", err)
	}
	if sourceID != "" {
		filtered := sources[:0]
		for _, s := range sources {
			if s.ID == sourceID {
				filtered = append(filtered, s)
			}
		}
		sources = filtered
	}
	if len(sources) == 0 {
		c.logger.Warn().Str("source_id", sourceID).Msg("No active sources to crawl")
		return nil
	}

	zipCodes, err := c.sources.ListZipCodes(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to load zip codes, local sources will be skipped")
		zipCodes = nil
	}

	var allNews []*models.NewsRecord
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.logger.Info().Str("source", source.SourceName).Str("scope", source.ContentScope).Msg("Processing source")

		if !source.NeedsZipCode() {
			allNews = append(allNews, c.scrapeSource(ctx, source, "")...)
			c.politenessPause(ctx)
			continue
		}

		if len(zipCodes) == 0 {
			c.logger.Warn().Str("source", source.SourceName).Msg("Local source needs zip codes but none are configured")
			continue
		}
		for _, zip := range zipCodes {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.logger.Info().Str("source", source.SourceName).Str("zip", zip).Msg("Crawling zip code")
			allNews = append(allNews, c.scrapeSource(ctx, source, zip)...)
			c.politenessPause(ctx)
		}
	}

	deduped := dedupRecords(allNews, c.logger)

	var inserted []*models.NewsRecord
	var persistErr error
	if len(deduped) > 0 {
		count, records, err := c.news.InsertWithDedup(ctx, deduped)
		if err != nil {
			c.notifier.NotifyFailure(ctx, models.TaskTypeFullRun, err.Error(), "", "")
			persistErr = fmt.Errorf("failed to persist news: %w", err)
		} else {
			inserted = records
			c.logger.Info().Int("inserted", count).Int("collected", len(deduped)).Msg("News persisted")
		}
	} else {
		c.logger.Warn().Msg("Harvest run collected no news")
	}

	if len(inserted) > 0 {
		stats := c.reviewer.ProcessRecords(ctx, inserted)
		c.logger.Info().Int("approved", stats.Approved).Int("processed", stats.Processed).Msg("Review pass complete")
	}

	// The snapshot covers everything collected this run, whether or not
	// persistence succeeded.
	if len(allNews) > 0 {
		if _, err := c.exporter.ExportByDateAndSource(allNews, ""); err != nil {
			c.logger.Error().Err(err).Msg("JSON export failed")
		}
	}

	if persistErr != nil {
		return persistErr
	}
	c.logger.Info().Int("total", len(allNews)).Msg("Harvest run complete")
	return nil
}

// scrapeSource crawls one (source, zipCode) pair under the configured
// timeout and returns the validated records. Failures are logged, notified,
// and recorded in the task log; they never abort the run.
func (c *Coordinator) scrapeSource(ctx context.Context, source *models.SourceConfig, zipCode string) []*models.NewsRecord {
	strategy, err := c.registry.Lookup(source)
	if err != nil {
		c.logger.Warn().Err(err).Str("source", source.SourceName).Msg("No strategy for source")
		return nil
	}

	taskID, err := c.tasks.LogTask(ctx, &models.TaskLog{
		TaskType: source.TaskType(),
		Status:   models.TaskStatusRunning,
		SourceID: source.ID,
		Source:   source.SourceName,
		ZipCode:  zipCode,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to open task log entry")
	}

	limit := c.cfg.RealEstateLimit
	if zipCode != "" {
		limit = c.cfg.LocalNewsLimit
	}

	crawlCtx, cancel := context.WithTimeout(ctx, c.crawlTimeout())
	articles, scrapeErr := strategy.Scrape(crawlCtx, zipCode, limit)
	cancel()

	if scrapeErr != nil {
		c.logger.Error().Err(scrapeErr).Str("source", source.SourceName).Str("zip", zipCode).Msg("Crawl failed")
		c.notifier.NotifyFailure(ctx, source.TaskType(), scrapeErr.Error(), zipCode, source.SourceName)
		if taskID != "" {
			if err := c.tasks.UpdateTask(ctx, taskID, models.TaskStatusFailed, 0, scrapeErr.Error()); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to close task log entry")
			}
		}
		return nil
	}

	records := c.prepareRecords(ctx, source, zipCode, articles)

	if taskID != "" {
		if err := c.tasks.UpdateTask(ctx, taskID, models.TaskStatusSuccess, len(records), ""); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to close task log entry")
		}
	}
	return records
}

// prepareRecords cleans, enriches, and converts raw articles into records,
// dropping anything that fails validation.
func (c *Coordinator) prepareRecords(ctx context.Context, source *models.SourceConfig, zipCode string, articles []*models.RawArticle) []*models.NewsRecord {
	if len(articles) == 0 {
		return nil
	}

	cleaned := c.cleaner.CleanArticles(articles)
	c.enricher.EnrichArticles(ctx, cleaned)

	records := make([]*models.NewsRecord, 0, len(cleaned))
	for _, article := range cleaned {
		rec := c.toRecord(source, zipCode, article)
		if err := rec.Validate(); err != nil {
			c.logger.Warn().Err(err).Str("url", article.URL).Msg("Skipping invalid record")
			continue
		}
		records = append(records, rec)
	}
	return records
}

func (c *Coordinator) toRecord(source *models.SourceConfig, zipCode string, article *models.RawArticle) *models.NewsRecord {
	city := source.City
	if city == "" {
		city = article.City
	}
	zip := zipCode
	if zip == "" {
		zip = article.ZipCode
	}
	content := article.Content
	if content == "" {
		content = article.ContentSummary
	}
	sourceName := article.Source
	if sourceName == "" {
		sourceName = source.SourceName
	}

	return &models.NewsRecord{
		SourceID:    source.ID,
		Source:      sourceName,
		City:        city,
		ZipCode:     zip,
		Title:       article.Title,
		Content:     content,
		PublishDate: article.PublishDate,
		URL:         article.URL,
		Language:    models.DefaultLanguage,
		RawCategory: rawCategory(article),
		Status:      models.StatusNew,
	}
}

// rawCategory derives the category label from the article keywords, capped
// to the first five so the field stays short.
func rawCategory(article *models.RawArticle) string {
	if len(article.Keywords) == 0 {
		return ""
	}
	keywords := article.Keywords
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	return strings.Join(keywords, ", ")
}

// dedupRecords drops records whose canonical URL was already seen in this
// run, keeping the first occurrence. Records without a URL are kept.
func dedupRecords(records []*models.NewsRecord, logger arbor.ILogger) []*models.NewsRecord {
	if len(records) == 0 {
		return records
	}

	seen := make(map[string]struct{}, len(records))
	kept := make([]*models.NewsRecord, 0, len(records))
	for _, rec := range records {
		if rec.URL == "" {
			logger.Warn().Str("title", rec.Title).Msg("Record without URL kept through dedup")
			kept = append(kept, rec)
			continue
		}
		canonical := normalizer.CanonicalURL(rec.URL)
		if _, dup := seen[canonical]; dup {
			logger.Debug().Str("url", rec.URL).Msg("Duplicate URL dropped")
			continue
		}
		seen[canonical] = struct{}{}
		kept = append(kept, rec)
	}

	if removed := len(records) - len(kept); removed > 0 {
		logger.Info().Int("before", len(records)).Int("after", len(kept)).Msg("Run-level dedup removed duplicates")
	}
	return kept
}

func (c *Coordinator) crawlTimeout() time.Duration {
	if c.cfg.CrawlTimeout > 0 {
		return c.cfg.CrawlTimeout
	}
	return 5 * time.Minute
}

func (c *Coordinator) politenessPause(ctx context.Context) {
	delay := c.cfg.PolitenessDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}
