package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

// maxConcurrentFetches bounds the parallel article-body downloads so
// enrichment does not hammer the source sites.
const maxConcurrentFetches = 3

// Fetcher downloads the full body for articles whose listing only carried a
// summary.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewFetcher creates a Fetcher. timeout bounds one article download.
func NewFetcher(userAgent string, timeout time.Duration, logger arbor.ILogger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

// FetchContent retrieves the readable body of one article as markdown.
// Returns empty string when the page yields no usable content.
func (f *Fetcher) FetchContent(ctx context.Context, pageURL string) (string, error) {
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		return "", fmt.Errorf("invalid article URL: %s", pageURL)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s returned status %d", pageURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, req.URL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content from %s: %w", pageURL, err)
	}

	converter := md.NewConverter(req.URL.Host, true, nil)
	markdown, err := converter.ConvertString(article.Content)
	if err != nil {
		// Markdown conversion is cosmetic; fall back to the plain text.
		f.logger.Warn().Err(err).Str("url", pageURL).Msg("Markdown conversion failed, using plain text")
		return strings.TrimSpace(article.TextContent), nil
	}
	return strings.TrimSpace(markdown), nil
}

// EnrichArticles fills Content for articles that only have a summary,
// fetching up to maxConcurrentFetches bodies at a time. Fetch failures leave
// the summary in place; the listing data is still worth keeping.
func (f *Fetcher) EnrichArticles(ctx context.Context, articles []*models.RawArticle) {
	sem := make(chan struct{}, maxConcurrentFetches)
	var wg sync.WaitGroup

	enriched := 0
	var mu sync.Mutex

	for _, article := range articles {
		if article.URL == "" {
			continue
		}
		// Articles whose content is just the listing summary need the body.
		if article.Content != "" && article.Content != article.ContentSummary {
			continue
		}

		wg.Add(1)
		go func(article *models.RawArticle) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			content, err := f.FetchContent(ctx, article.URL)
			if err != nil {
				f.logger.Debug().Err(err).Str("url", article.URL).Msg("Body fetch failed, keeping summary")
				return
			}
			if content == "" {
				return
			}

			article.Content = content
			mu.Lock()
			enriched++
			mu.Unlock()
		}(article)
	}
	wg.Wait()

	f.logger.Info().Int("enriched", enriched).Int("total", len(articles)).Msg("Article enrichment complete")
}
