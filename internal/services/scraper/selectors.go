package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rstatelabs/playnews/internal/models"
)

// Generic fallback selector groups. Strategies prepend their site-specific
// selectors; these cover the long tail when a site changes its markup.
var (
	titleSelectors = []string{
		"h1", "h2", "h3", "h4",
		".title", ".headline", ".article-title", ".post-title",
		"[data-testid*='title']",
		"a.title", "a.headline",
	}
	linkSelectors = []string{
		"a[href]",
		"a.article-link",
		"a[href*='/news']",
		"a[href*='/article']",
		"a[href*='/story']",
		".title a",
		".headline a",
	}
	dateSelectors = []string{
		"time[datetime]",
		"time",
		".date", ".publish-date", ".published-date",
		"[datetime]",
		".timestamp",
		"[data-testid*='date']",
		".meta time",
		".byline time",
	}
	summarySelectors = []string{
		".summary", ".excerpt", ".description",
		".article-summary", ".post-excerpt",
		"p:not(.title):not(.headline)",
		".snippet", ".preview",
	}
)

var hiddenStylePattern = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden`)

// visible reports whether the node and all its ancestors are free of static
// hiding markers. A DOM snapshot has no computed styles; attribute and
// inline-style checks catch hidden templates and collapsed menus, which
// otherwise shadow the real content in a selector fallback.
func visible(sel *goquery.Selection) bool {
	for s := sel; s.Length() > 0; s = s.Parent() {
		if _, hidden := s.Attr("hidden"); hidden {
			return false
		}
		if s.AttrOr("aria-hidden", "") == "true" {
			return false
		}
		if style, ok := s.Attr("style"); ok && hiddenStylePattern.MatchString(style) {
			return false
		}
	}
	return true
}

// FindFirstText tries selectors in order and returns the first non-empty
// trimmed text from a visible node.
func FindFirstText(sel *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		text := ""
		sel.Find(s).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			if !visible(node) {
				return true
			}
			if t := strings.TrimSpace(node.Text()); t != "" {
				text = t
				return false
			}
			return true
		})
		if text != "" {
			return text
		}
	}
	return ""
}

// FindFirstNode tries selectors in order and returns the first visible match.
func FindFirstNode(sel *goquery.Selection, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		var found *goquery.Selection
		sel.Find(s).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			if visible(node) {
				found = node
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// FindFirstAttr tries selectors in order and returns the first non-empty
// value of attr on a visible node.
func FindFirstAttr(sel *goquery.Selection, selectors []string, attr string) string {
	for _, s := range selectors {
		val := ""
		sel.Find(s).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			if !visible(node) {
				return true
			}
			if v, ok := node.Attr(attr); ok && strings.TrimSpace(v) != "" {
				val = strings.TrimSpace(v)
				return false
			}
			return true
		})
		if val != "" {
			return val
		}
	}
	return ""
}

// FindArticleNodes tries container selectors in order and returns the nodes
// of the first selector matching at least minCount article-like elements.
// Hidden elements and elements without a link are not articles and do not
// count.
func FindArticleNodes(doc *goquery.Document, selectors []string, minCount int) []*goquery.Selection {
	if minCount < 1 {
		minCount = 1
	}

	for _, s := range selectors {
		var nodes []*goquery.Selection
		doc.Find(s).Each(func(_ int, node *goquery.Selection) {
			if visible(node) && node.Find("a[href]").Length() > 0 {
				nodes = append(nodes, node)
			}
		})
		if len(nodes) >= minCount {
			return nodes
		}
	}
	return nil
}

// ExtractOptions carries source-specific selectors prepended to the generic
// fallbacks, plus the base URL for resolving relative links.
type ExtractOptions struct {
	Source       string
	BaseURL      string
	ZipCode      string
	TitleFirst   []string
	LinkFirst    []string
	DateFirst    []string
	SummaryFirst []string
}

// ExtractArticle pulls one article out of a container node. Returns nil when
// no title or link can be found; everything else degrades gracefully.
func ExtractArticle(node *goquery.Selection, opts ExtractOptions) *models.RawArticle {
	title := FindFirstText(node, append(opts.TitleFirst, titleSelectors...))

	link := FindFirstAttr(node, append(opts.LinkFirst, linkSelectors...), "href")
	link = AbsoluteURL(opts.BaseURL, link)

	if title == "" || link == "" {
		return nil
	}

	publishDate := ""
	if dateNode := FindFirstNode(node, append(opts.DateFirst, dateSelectors...)); dateNode != nil {
		if attr, ok := dateNode.Attr("datetime"); ok && strings.TrimSpace(attr) != "" {
			publishDate = strings.TrimSpace(attr)
		} else {
			publishDate = strings.TrimSpace(dateNode.Text())
		}
	}

	summary := FindFirstText(node, append(opts.SummaryFirst, summarySelectors...))

	return &models.RawArticle{
		Source:         opts.Source,
		Title:          title,
		URL:            link,
		PublishDate:    publishDate,
		Content:        summary,
		ContentSummary: summary,
		ZipCode:        opts.ZipCode,
	}
}

// AbsoluteURL resolves href against base when href is relative.
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}

	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
