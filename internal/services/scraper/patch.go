package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/rstatelabs/playnews/internal/models"
)

const patchBaseURL = "https://patch.com/"

var (
	patchZipInputSelectors = []string{
		"#find-your-patch",
		"input#find-your-patch",
		"input[placeholder*='ZIP code' i]",
		"input[placeholder*='town' i]",
		"input.find-your-patch",
	}
	patchSuggestionSelectors = []string{
		".autocomplete__list-item a.autocomplete__btn",
		".autocomplete__list-item a",
		".autocomplete__btn",
	}
	patchArticleSelectors = []string{
		"article.styles_ArticleCard__ZF3Wi",
		"article.styles_Card__h4UC9",
		".patch-article-card",
		".article-card",
		"article",
		"[data-testid='article']",
		".card",
		"div[class*='article']",
		"main article",
	}
)

// Patch crawls patch.com hyperlocal news. The site has no direct zip URL;
// the crawl types the zip into the homepage finder and follows the first
// autocomplete suggestion to the community page.
type Patch struct {
	site
}

func NewPatch(s site) *Patch {
	return &Patch{site: s}
}

func (p *Patch) Name() string { return "Patch" }

func (p *Patch) Scrape(ctx context.Context, zipCode string, limit int) ([]*models.RawArticle, error) {
	tabCtx, cancel, err := p.session.NewTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	if err := p.navigate(tabCtx, patchBaseURL); err != nil {
		return nil, fmt.Errorf("patch homepage load failed: %w", err)
	}
	p.humanDelay(tabCtx)
	p.dismissOverlays(tabCtx)

	if err := p.typeInto(tabCtx, patchZipInputSelectors, zipCode); err != nil {
		return nil, fmt.Errorf("patch zip finder not found: %w", err)
	}

	// The autocomplete takes a moment to populate after typing.
	if err := RandomDelay(tabCtx, 3*time.Second, 3*time.Second); err != nil {
		return nil, err
	}

	suggestionHref := p.firstAttr(tabCtx, patchSuggestionSelectors, "href")
	if suggestionHref == "" {
		return nil, fmt.Errorf("patch autocomplete produced no suggestion for zip %s", zipCode)
	}
	communityURL := AbsoluteURL(patchBaseURL, suggestionHref)
	p.logger.Info().Str("zip_code", zipCode).Str("community_url", communityURL).Msg("Patch community resolved")

	if err := p.navigate(tabCtx, communityURL); err != nil {
		return nil, fmt.Errorf("patch community page load failed: %w", err)
	}
	p.humanDelay(tabCtx)

	doc, err := p.renderedDoc(tabCtx)
	if err != nil {
		return nil, err
	}

	nodes := FindArticleNodes(doc, patchArticleSelectors, 1)
	if len(nodes) == 0 {
		p.logger.Warn().Str("zip_code", zipCode).Str("url", communityURL).Msg("Patch community page has no articles")
		return nil, nil
	}

	opts := ExtractOptions{
		Source:  p.Name(),
		BaseURL: patchBaseURL,
		ZipCode: zipCode,
		TitleFirst: []string{
			"h2.styles_Card__Title__cEqF8 a",
			"h2.styles_Card__Title__cEqF8",
		},
		LinkFirst: []string{
			"a.styles_Card__TitleLink__Df5jx",
			"h2.styles_Card__Title__cEqF8 a",
		},
		DateFirst: []string{
			".styles_Card__LabelWrapper__e_6qr time",
		},
		SummaryFirst: []string{
			"p.styles_Card__Description__kWZTu",
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

	p.logger.Info().Str("zip_code", zipCode).Int("count", len(articles)).Msg("Patch crawl complete")
	return articles, nil
}
