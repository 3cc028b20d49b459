package scraper

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/rstatelabs/playnews/internal/models"
)

const realtorNewsURL = "https://www.realtor.com/news/real-estate-news/"

var realtorArticleSelectors = []string{
	"div.sc-1ri3r0p-0",
	"div[class*='sc-1ri3r0p-0']",
	"div[class*='Cardstyles']",
	"div.card-content",
	"div[class*='card']",
	"article",
	".article-card",
	".news-item",
}

// Realtor crawls realtor.com national real estate news. The site fronts a
// bot-detection challenge for fresh browser fingerprints, so this strategy
// runs on a session with a persistent profile; once a verification has been
// passed manually the cookies carry over.
type Realtor struct {
	site
}

func NewRealtor(s site) *Realtor {
	return &Realtor{site: s}
}

func (r *Realtor) Name() string { return "Realtor.com" }

func (r *Realtor) Scrape(ctx context.Context, _ string, limit int) ([]*models.RawArticle, error) {
	tabCtx, cancel, err := r.session.NewTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := r.navigate(tabCtx, realtorNewsURL); err != nil {
		return nil, fmt.Errorf("realtor news page load failed: %w", err)
	}
	r.humanDelay(tabCtx)
	r.dismissOverlays(tabCtx)

	if r.isChallenged(tabCtx) {
		return nil, fmt.Errorf("realtor.com served a verification challenge; complete it once in the persistent profile")
	}

	doc, err := r.renderedDoc(tabCtx)
	if err != nil {
		return nil, err
	}

	nodes := FindArticleNodes(doc, realtorArticleSelectors, 1)
	if len(nodes) == 0 {
		r.logger.Warn().Msg("Realtor news page has no recognizable articles")
		return nil, nil
	}

	opts := ExtractOptions{
		Source:  r.Name(),
		BaseURL: "https://www.realtor.com/",
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

	r.logger.Info().Int("count", len(articles)).Msg("Realtor crawl complete")
	return articles, nil
}

// isChallenged detects the interstitial verification page.
func (r *Realtor) isChallenged(tabCtx context.Context) bool {
	const js = `document.querySelector("#challenge-form, .cf-browser-verification") !== null`
	var challenged bool
	if err := chromedp.Run(tabCtx, chromedp.Evaluate(js, &challenged)); err != nil {
		return false
	}
	return challenged
}
