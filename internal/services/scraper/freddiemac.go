package scraper

import (
	"context"
	"fmt"

	"github.com/rstatelabs/playnews/internal/models"
)

const freddieMacNewsURL = "https://freddiemac.gcs-web.com/"

var freddieMacArticleSelectors = []string{
	"article.node.node--type-nir-news",
	"article.node",
	"article",
	".article-card",
	".news-item",
	"[data-testid='article']",
	".press-release",
	".card",
	"div[class*='article']",
	"div[class*='press']",
}

// FreddieMac crawls the Freddie Mac investor newsroom, a Drupal site listing
// mortgage-market press releases.
type FreddieMac struct {
	site
}

func NewFreddieMac(s site) *FreddieMac {
	return &FreddieMac{site: s}
}

func (f *FreddieMac) Name() string { return "Freddie Mac" }

func (f *FreddieMac) Scrape(ctx context.Context, _ string, limit int) ([]*models.RawArticle, error) {
	tabCtx, cancel, err := f.session.NewTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := f.navigate(tabCtx, freddieMacNewsURL); err != nil {
		return nil, fmt.Errorf("freddie mac newsroom load failed: %w", err)
	}
	f.humanDelay(tabCtx)

	doc, err := f.renderedDoc(tabCtx)
	if err != nil {
		return nil, err
	}

	nodes := FindArticleNodes(doc, freddieMacArticleSelectors, 1)
	if len(nodes) == 0 {
		f.logger.Warn().Msg("Freddie Mac newsroom has no recognizable articles")
		return nil, nil
	}

	opts := ExtractOptions{
		Source:  f.Name(),
		BaseURL: freddieMacNewsURL,
		TitleFirst: []string{
			"h3.nir-widget--news--headline > a",
			"h3.nir-widget--news--headline",
		},
		LinkFirst: []string{
			"h3.nir-widget--news--headline > a",
		},
		DateFirst: []string{
			".nir-widget--news--date-time",
		},
		SummaryFirst: []string{
			".nir-widget--news--teaser",
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

	f.logger.Info().Int("count", len(articles)).Msg("Freddie Mac crawl complete")
	return articles, nil
}
