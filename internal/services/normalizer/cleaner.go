package normalizer

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
)

// Normalizer cleans scraped articles: HTML stripping, date normalization,
// keyword extraction and recency filtering.
type Normalizer struct {
	timeRangeDays int
	cutoff        time.Time
	logger        arbor.ILogger
}

// New creates a Normalizer whose recency cutoff is timeRangeDays before now.
func New(timeRangeDays int, logger arbor.ILogger) *Normalizer {
	return &Normalizer{
		timeRangeDays: timeRangeDays,
		cutoff:        time.Now().UTC().AddDate(0, 0, -timeRangeDays),
		logger:        logger,
	}
}

// CleanHTML strips markup from an HTML fragment and collapses whitespace.
func (n *Normalizer) CleanHTML(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		n.logger.Warn().Err(err).Msg("HTML parse failed, stripping tags directly")
		return strings.TrimSpace(htmlTagPattern.ReplaceAllString(html, ""))
	}

	doc.Find("script, style").Remove()
	text := doc.Text()
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// CleanArticle normalizes one article in place: content is de-HTML'd (falling
// back to the summary when no body was captured), the publish date is brought
// to RFC 3339 (current time when missing or unparseable), and keywords are
// extracted from title plus content when the source supplied none.
func (n *Normalizer) CleanArticle(article *models.RawArticle) {
	if article.Content != "" {
		article.Content = n.CleanHTML(article.Content)
	} else if article.ContentSummary != "" {
		article.Content = n.CleanHTML(article.ContentSummary)
		article.ContentSummary = article.Content
	}

	if normalized, ok := n.NormalizeDate(article.PublishDate); ok {
		article.PublishDate = normalized
	} else {
		article.PublishDate = time.Now().UTC().Format(time.RFC3339)
	}

	if len(article.Keywords) == 0 {
		text := article.Title + " " + article.Content
		if article.Content == "" {
			text = article.Title + " " + article.ContentSummary
		}
		article.Keywords = n.ExtractKeywords(text)
	}
}

// CleanArticles normalizes a batch and applies the recency filter.
func (n *Normalizer) CleanArticles(articles []*models.RawArticle) []*models.RawArticle {
	for _, article := range articles {
		n.CleanArticle(article)
	}

	filtered := n.FilterByTimeRange(articles)
	n.logger.Info().
		Int("input", len(articles)).
		Int("output", len(filtered)).
		Msg("Article cleaning complete")
	return filtered
}

// FilterByTimeRange keeps articles published at or after the cutoff.
// Articles without a publish date are dropped; articles whose date cannot be
// parsed are kept.
func (n *Normalizer) FilterByTimeRange(articles []*models.RawArticle) []*models.RawArticle {
	filtered := make([]*models.RawArticle, 0, len(articles))

	for _, article := range articles {
		if article.PublishDate == "" {
			continue
		}

		published, err := parsePublishDate(article.PublishDate)
		if err != nil {
			n.logger.Warn().
				Str("date", article.PublishDate).
				Err(err).
				Msg("Unparseable publish date, keeping article")
			filtered = append(filtered, article)
			continue
		}

		if !published.Before(n.cutoff) {
			filtered = append(filtered, article)
		} else {
			n.logger.Debug().Str("title", truncate(article.Title, 50)).Msg("Article outside time range, filtered")
		}
	}
	return filtered
}

func parsePublishDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return dateparse.ParseIn(s, time.UTC)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
