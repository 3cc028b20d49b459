package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/rstatelabs/playnews/internal/models"
	"github.com/rstatelabs/playnews/internal/services/normalizer"
)

const newsbreakBaseURL = "https://www.newsbreak.com"

// Newsbreak city pages split content into categories; these three carry the
// local business and housing signal.
var newsbreakCategories = []string{"business", "education", "poi_housing"}

var (
	newsbreakZipInputSelectors = []string{
		`input[placeholder="City name or zip code"]`,
		`input[placeholder*="zip code" i]`,
	}
	newsbreakSuggestionSelectors = []string{
		`a[aria-label*="/"]`,
		".autocomplete a",
		"[class*='suggestion'] a",
	}
	newsbreakArticleSelectors = []string{
		"section.my-1",
		"div.flex.flex-col section",
		"section[class*='my-']",
		"article",
		"div[class*='article']",
	}
)

// Newsbreak crawls newsbreak.com local news by zip code. The crawl resolves
// the zip to a city path through the locations search, then fans out over
// the categories concurrently, one tab each. Only articles from the last 24
// hours are kept; the city feeds churn fast and older items recirculate.
type Newsbreak struct {
	site
}

func NewNewsbreak(s site) *Newsbreak {
	return &Newsbreak{site: s}
}

func (n *Newsbreak) Name() string { return "Newsbreak" }

func (n *Newsbreak) Scrape(ctx context.Context, zipCode string, limit int) ([]*models.RawArticle, error) {
	cityPath, err := n.resolveCityPath(ctx, zipCode)
	if err != nil {
		return nil, err
	}
	n.logger.Info().Str("zip_code", zipCode).Str("city_path", cityPath).Msg("Newsbreak city resolved")

	var (
		mu       sync.Mutex
		articles []*models.RawArticle
		wg       sync.WaitGroup
	)

	for _, category := range newsbreakCategories {
		wg.Add(1)
		go func(category string) {
			defer wg.Done()

			found, err := n.scrapeCategory(ctx, cityPath, category, zipCode, limit)
			if err != nil {
				n.logger.Warn().Str("category", category).Err(err).Msg("Newsbreak category crawl failed")
				return
			}
			mu.Lock()
			articles = append(articles, found...)
			mu.Unlock()
		}(category)
	}
	wg.Wait()

	articles = dedupByURL(articles)
	articles = n.filterLast24Hours(articles)
	if len(articles) > limit {
		articles = articles[:limit]
	}

	n.logger.Info().Str("zip_code", zipCode).Int("count", len(articles)).Msg("Newsbreak crawl complete")
	return articles, nil
}

// resolveCityPath turns a zip code into a city path like "/beverly-hills-ca"
// via the locations search box.
func (n *Newsbreak) resolveCityPath(ctx context.Context, zipCode string) (string, error) {
	tabCtx, cancel, err := n.session.NewTab(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	if err := n.navigate(tabCtx, newsbreakBaseURL+"/locations"); err != nil {
		return "", fmt.Errorf("newsbreak locations page load failed: %w", err)
	}
	n.humanDelay(tabCtx)
	n.dismissOverlays(tabCtx)

	if err := n.typeInto(tabCtx, newsbreakZipInputSelectors, zipCode); err != nil {
		return "", fmt.Errorf("newsbreak location search not found: %w", err)
	}
	if err := RandomDelay(tabCtx, 2*time.Second, 3*time.Second); err != nil {
		return "", err
	}

	href := n.firstAttr(tabCtx, newsbreakSuggestionSelectors, "href")
	if href == "" {
		return "", fmt.Errorf("newsbreak found no city for zip %s", zipCode)
	}

	// Keep only the path; suggestions sometimes carry the full URL.
	if u, err := url.Parse(href); err == nil && u.Path != "" {
		href = u.Path
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return href, nil
}

func (n *Newsbreak) scrapeCategory(ctx context.Context, cityPath, category, zipCode string, limit int) ([]*models.RawArticle, error) {
	tabCtx, cancel, err := n.session.NewTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	categoryURL := fmt.Sprintf("%s%s-%s", newsbreakBaseURL, cityPath, category)
	if err := n.navigate(tabCtx, categoryURL); err != nil {
		return nil, err
	}
	_ = RandomDelay(tabCtx, 1*time.Second, 2*time.Second)
	n.dismissOverlays(tabCtx)

	doc, err := n.renderedDoc(tabCtx)
	if err != nil {
		return nil, err
	}

	nodes := FindArticleNodes(doc, newsbreakArticleSelectors, 1)
	city := cityNameFromPath(cityPath)

	articles := make([]*models.RawArticle, 0, limit)
	for _, node := range nodes {
		if len(articles) >= limit {
			break
		}
		article := n.extractArticle(node, zipCode, city)
		if article != nil {
			articles = append(articles, article)
		}
	}

	n.logger.Debug().Str("category", category).Int("count", len(articles)).Msg("Newsbreak category extracted")
	return articles, nil
}

func (n *Newsbreak) extractArticle(node *goquery.Selection, zipCode, city string) *models.RawArticle {
	title := strings.TrimSpace(node.Find("h3.text-xl").First().Text())
	if title == "" {
		return nil
	}

	href, _ := node.Find(`a[aria-label*="/"]`).First().Attr("href")
	if href == "" {
		href, _ = node.Find("a[href]").First().Attr("href")
	}
	if href == "" {
		return nil
	}
	pageURL := AbsoluteURL(newsbreakBaseURL+"/", href)

	summary := strings.TrimSpace(node.Find("p.text-base.text-gray-light").First().Text())
	publishDate := strings.TrimSpace(node.Find("div.text-gray-light.text-sm").First().Text())

	return &models.RawArticle{
		Source:         n.Name(),
		Title:          title,
		URL:            pageURL,
		PublishDate:    publishDate,
		Content:        summary,
		ContentSummary: summary,
		ZipCode:        zipCode,
		City:           city,
	}
}

// filterLast24Hours keeps articles published within 24 hours. Newsbreak
// listings mostly carry relative phrases ("5 hours ago"), so dates go through
// the full resolution cascade. Unparseable dates keep the article; missing
// dates drop it.
func (n *Newsbreak) filterLast24Hours(articles []*models.RawArticle) []*models.RawArticle {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	filtered := make([]*models.RawArticle, 0, len(articles))

	for _, article := range articles {
		if article.PublishDate == "" {
			continue
		}
		published, ok := normalizer.ResolveDate(article.PublishDate)
		if !ok {
			n.logger.Warn().Str("date", article.PublishDate).Msg("Unparseable date, keeping article")
			filtered = append(filtered, article)
			continue
		}
		if !published.Before(cutoff) {
			filtered = append(filtered, article)
		}
	}
	return filtered
}

// cityNameFromPath converts "/beverly-hills-ca" to "Beverly Hills Ca".
func cityNameFromPath(cityPath string) string {
	parts := strings.Split(strings.Trim(cityPath, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	words := strings.Split(strings.ReplaceAll(parts[len(parts)-1], "-", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func dedupByURL(articles []*models.RawArticle) []*models.RawArticle {
	seen := make(map[string]struct{}, len(articles))
	result := make([]*models.RawArticle, 0, len(articles))
	for _, article := range articles {
		if article.URL == "" {
			result = append(result, article)
			continue
		}
		if _, dup := seen[article.URL]; dup {
			continue
		}
		seen[article.URL] = struct{}{}
		result = append(result, article)
	}
	return result
}
