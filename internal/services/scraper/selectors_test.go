package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestFindArticleNodesRequiresLinks(t *testing.T) {
	doc := docFromHTML(t, `
		<article><h2>No link here</h2></article>
		<article><h2><a href="/a">Linked A</a></h2></article>
		<article><h2><a href="/b">Linked B</a></h2></article>
	`)

	nodes := FindArticleNodes(doc, []string{"article"}, 1)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 linked articles, got %d", len(nodes))
	}
}

func TestFindArticleNodesFallsThroughSelectors(t *testing.T) {
	doc := docFromHTML(t, `
		<div class="card"><a href="/x">X</a></div>
		<div class="card"><a href="/y">Y</a></div>
	`)

	nodes := FindArticleNodes(doc, []string{"article.missing", ".card"}, 2)
	if len(nodes) != 2 {
		t.Fatalf("expected fallback selector to match, got %d nodes", len(nodes))
	}

	if got := FindArticleNodes(doc, []string{".card"}, 3); got != nil {
		t.Errorf("expected nil below min count, got %d nodes", len(got))
	}
}

func TestFindFirstTextSkipsHiddenNodes(t *testing.T) {
	doc := docFromHTML(t, `
		<div class="title" style="display: none">Template headline</div>
		<div hidden><div class="title">Menu headline</div></div>
		<div aria-hidden="true"><div class="title">Overlay headline</div></div>
		<div class="title">Visible headline</div>
	`)

	if got := FindFirstText(doc.Selection, []string{".title"}); got != "Visible headline" {
		t.Errorf("hidden nodes should be skipped, got %q", got)
	}
}

func TestFindFirstAttrSkipsHiddenNodes(t *testing.T) {
	doc := docFromHTML(t, `
		<a href="/hidden" style="visibility: hidden">Ghost</a>
		<a href="/shown">Real</a>
	`)

	if got := FindFirstAttr(doc.Selection, []string{"a[href]"}, "href"); got != "/shown" {
		t.Errorf("hidden link should be skipped, got %q", got)
	}
}

func TestFindArticleNodesSkipsHidden(t *testing.T) {
	doc := docFromHTML(t, `
		<article style="display:none"><h2><a href="/ghost">Ghost</a></h2></article>
		<article><h2><a href="/real">Real</a></h2></article>
	`)

	nodes := FindArticleNodes(doc, []string{"article"}, 1)
	if len(nodes) != 1 {
		t.Fatalf("expected 1 visible article, got %d", len(nodes))
	}
	if href, _ := nodes[0].Find("a").Attr("href"); href != "/real" {
		t.Errorf("visible article should win, got %q", href)
	}
}

func TestExtractArticle(t *testing.T) {
	doc := docFromHTML(t, `
		<article>
			<h2 class="headline"><a href="/news/rates-drop">Mortgage rates drop</a></h2>
			<time datetime="2026-08-30T12:00:00Z">Aug 30</time>
			<p class="summary">Rates fell for the third week.</p>
		</article>
	`)

	node := doc.Find("article").First()
	article := ExtractArticle(node, ExtractOptions{
		Source:  "TestSource",
		BaseURL: "https://example.com/",
		ZipCode: "78701",
	})
	if article == nil {
		t.Fatal("expected an article")
	}
	if article.Title != "Mortgage rates drop" {
		t.Errorf("title = %q", article.Title)
	}
	if article.URL != "https://example.com/news/rates-drop" {
		t.Errorf("relative URL not resolved: %q", article.URL)
	}
	if article.PublishDate != "2026-08-30T12:00:00Z" {
		t.Errorf("datetime attribute should win: %q", article.PublishDate)
	}
	if article.ContentSummary != "Rates fell for the third week." {
		t.Errorf("summary = %q", article.ContentSummary)
	}
	if article.ZipCode != "78701" {
		t.Errorf("zip code = %q", article.ZipCode)
	}
	if article.Source != "TestSource" {
		t.Errorf("source = %q", article.Source)
	}
}

func TestExtractArticleRejectsMissingTitleOrLink(t *testing.T) {
	doc := docFromHTML(t, `<article><p class="summary">Only a summary</p></article>`)
	node := doc.Find("article").First()

	if got := ExtractArticle(node, ExtractOptions{BaseURL: "https://example.com/"}); got != nil {
		t.Errorf("expected nil for article without title and link, got %+v", got)
	}
}

func TestExtractArticleDateTextFallback(t *testing.T) {
	doc := docFromHTML(t, `
		<article>
			<h3><a href="https://example.com/story">Story</a></h3>
			<span class="date">3 hours ago</span>
		</article>
	`)
	node := doc.Find("article").First()

	article := ExtractArticle(node, ExtractOptions{Source: "S", BaseURL: "https://example.com/"})
	if article == nil {
		t.Fatal("expected an article")
	}
	if article.PublishDate != "3 hours ago" {
		t.Errorf("date text fallback = %q", article.PublishDate)
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base     string
		href     string
		expected string
	}{
		{"https://patch.com/", "/texas/austin", "https://patch.com/texas/austin"},
		{"https://patch.com/", "https://other.com/x", "https://other.com/x"},
		{"https://patch.com/", "", ""},
		{"https://www.newsbreak.com/", "austin-tx-business", "https://www.newsbreak.com/austin-tx-business"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.href); got != tt.expected {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.expected)
		}
	}
}
