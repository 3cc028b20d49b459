package scraper

import (
	"context"
	"fmt"

	"github.com/rstatelabs/playnews/internal/models"
)

const narNewsroomURL = "https://www.nar.realtor/newsroom"

var narArticleSelectors = []string{
	"article.node--type-press-release",
	"article.node",
	"article",
	".views-row",
	".press-release",
	".card",
	"div[class*='article']",
}

// NAR crawls the National Association of Realtors newsroom for national
// industry news and press releases.
type NAR struct {
	site
}

func NewNAR(s site) *NAR {
	return &NAR{site: s}
}

func (n *NAR) Name() string { return "NAR" }

func (n *NAR) Scrape(ctx context.Context, _ string, limit int) ([]*models.RawArticle, error) {
	tabCtx, cancel, err := n.session.NewTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := n.navigate(tabCtx, narNewsroomURL); err != nil {
		return nil, fmt.Errorf("nar newsroom load failed: %w", err)
	}
	n.humanDelay(tabCtx)
	n.dismissOverlays(tabCtx)

	doc, err := n.renderedDoc(tabCtx)
	if err != nil {
		return nil, err
	}

	nodes := FindArticleNodes(doc, narArticleSelectors, 1)
	if len(nodes) == 0 {
		n.logger.Warn().Msg("NAR newsroom has no recognizable articles")
		return nil, nil
	}

	opts := ExtractOptions{
		Source:  n.Name(),
		BaseURL: "https://www.nar.realtor/",
		TitleFirst: []string{
			"h2.node__title a",
			"h2.node__title",
			".field--name-title",
		},
		LinkFirst: []string{
			"h2.node__title a",
		},
		SummaryFirst: []string{
			".field--name-body",
			".field--type-text-with-summary",
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

	n.logger.Info().Int("count", len(articles)).Msg("NAR crawl complete")
	return articles, nil
}
