package scraper

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rstatelabs/playnews/internal/models"
)

const redfinNewsURL = "https://www.redfin.com/news/"

var redfinArticleSelectors = []string{
	"article.post",
	"article",
	".post-card",
	".article-card",
	"div[class*='post']",
	"div[class*='article']",
}

// Redfin crawls the redfin.com news site, searching by zip code to surface
// market coverage for the area.
type Redfin struct {
	site
}

func NewRedfin(s site) *Redfin {
	return &Redfin{site: s}
}

func (r *Redfin) Name() string { return "Redfin" }

func (r *Redfin) Scrape(ctx context.Context, zipCode string, limit int) ([]*models.RawArticle, error) {
	tabCtx, cancel, err := r.session.NewTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	searchURL := redfinNewsURL + "?s=" + url.QueryEscape(zipCode)
	if err := r.navigate(tabCtx, searchURL); err != nil {
		return nil, fmt.Errorf("redfin news search failed: %w", err)
	}
	r.humanDelay(tabCtx)
	r.dismissOverlays(tabCtx)

	doc, err := r.renderedDoc(tabCtx)
	if err != nil {
		return nil, err
	}

	nodes := FindArticleNodes(doc, redfinArticleSelectors, 1)
	if len(nodes) == 0 {
		r.logger.Warn().Str("zip_code", zipCode).Msg("Redfin search returned no articles")
		return nil, nil
	}

	opts := ExtractOptions{
		Source:  r.Name(),
		BaseURL: redfinNewsURL,
		ZipCode: zipCode,
		TitleFirst: []string{
			"h2.entry-title a",
			"h2.entry-title",
		},
		LinkFirst: []string{
			"h2.entry-title a",
			"a.post-link",
		},
		SummaryFirst: []string{
			".entry-summary",
			".post-excerpt",
		},
	}

	articles := make([]*models.RawArticle, 0, limit)
	for _, node := range nodes {
		if len(articles) >= limit {
			break
		}
		if article := ExtractArticle(node, opts); article != nil {
			articles = append(articles, article)
		}
	}

	r.logger.Info().Str("zip_code", zipCode).Int("count", len(articles)).Msg("Redfin crawl complete")
	return articles, nil
}
