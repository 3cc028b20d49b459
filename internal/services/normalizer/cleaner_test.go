package normalizer

import (
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	return New(7, arbor.NewLogger())
}

func TestCleanHTML(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips tags",
			input:    "<p>Home prices <b>rose</b> in May.</p>",
			expected: "Home prices rose in May.",
		},
		{
			name:     "removes scripts",
			input:    "<div>Text<script>alert(1)</script></div>",
			expected: "Text",
		},
		{
			name:     "collapses whitespace",
			input:    "<p>a</p>\n\n   <p>b</p>",
			expected: "a b",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.CleanHTML(tt.input); got != tt.expected {
				t.Errorf("CleanHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeDateRelative(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		input  string
		maxAge time.Duration
	}{
		{"just now", time.Minute},
		{"5 minutes ago", 6 * time.Minute},
		{"3 hours ago", 3*time.Hour + time.Minute},
		{"yesterday", 24*time.Hour + time.Minute},
		{"2 days ago", 48*time.Hour + time.Minute},
		{"1 week ago", 7*24*time.Hour + time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := n.NormalizeDate(tt.input)
			if !ok {
				t.Fatalf("NormalizeDate(%q) failed", tt.input)
			}
			parsed, err := time.Parse(time.RFC3339, got)
			if err != nil {
				t.Fatalf("result %q is not RFC3339: %v", got, err)
			}
			age := time.Since(parsed)
			if age < 0 || age > tt.maxAge {
				t.Errorf("NormalizeDate(%q) age %v outside expected window %v", tt.input, age, tt.maxAge)
			}
		})
	}
}

func TestNormalizeDateAbsolute(t *testing.T) {
	n := newTestNormalizer(t)

	got, ok := n.NormalizeDate("2026-08-15T10:30:00Z")
	if !ok {
		t.Fatal("expected ISO timestamp to parse")
	}
	if !strings.HasPrefix(got, "2026-08-15T10:30:00") {
		t.Errorf("unexpected normalization: %q", got)
	}

	got, ok = n.NormalizeDate("August 15, 2026")
	if !ok {
		t.Fatal("expected long-form date to parse")
	}
	if !strings.HasPrefix(got, "2026-08-15") {
		t.Errorf("unexpected normalization: %q", got)
	}

	if _, ok := n.NormalizeDate("not a date at all ###"); ok {
		t.Error("expected gibberish to fail")
	}
	if _, ok := n.NormalizeDate(""); ok {
		t.Error("expected empty string to fail")
	}
}

func TestExtractKeywords(t *testing.T) {
	n := newTestNormalizer(t)

	keywords := n.ExtractKeywords("The Housing Market saw record home price growth while mortgage rates held and rent stabilized in the market.")

	want := map[string]bool{}
	for _, k := range keywords {
		if want[k] {
			t.Errorf("duplicate keyword %q", k)
		}
		want[k] = true
	}
	if !want["home price"] {
		t.Errorf("expected 'home price' in %v", keywords)
	}
	if !want["market"] {
		t.Errorf("expected 'market' in %v", keywords)
	}
	if !want["rent"] {
		t.Errorf("expected 'rent' in %v", keywords)
	}
	if len(keywords) > 10 {
		t.Errorf("keyword cap exceeded: %d", len(keywords))
	}

	if got := n.ExtractKeywords(""); len(got) != 0 {
		t.Errorf("expected no keywords for empty text, got %v", got)
	}
}

func TestFilterByTimeRange(t *testing.T) {
	n := newTestNormalizer(t)
	now := time.Now().UTC()

	articles := []*models.RawArticle{
		{Title: "fresh", PublishDate: now.Add(-24 * time.Hour).Format(time.RFC3339)},
		{Title: "stale", PublishDate: now.AddDate(0, 0, -30).Format(time.RFC3339)},
		{Title: "unparseable", PublishDate: "mystery date"},
		{Title: "no date"},
		{Title: "boundary", PublishDate: n.cutoff.Format(time.RFC3339Nano)},
		{Title: "just outside", PublishDate: n.cutoff.Add(-time.Second).Format(time.RFC3339Nano)},
	}

	filtered := n.FilterByTimeRange(articles)

	titles := map[string]bool{}
	for _, a := range filtered {
		titles[a.Title] = true
	}

	if !titles["fresh"] {
		t.Error("recent article should be kept")
	}
	if titles["stale"] {
		t.Error("stale article should be filtered")
	}
	if !titles["unparseable"] {
		t.Error("article with unparseable date must be kept")
	}
	if titles["no date"] {
		t.Error("article without publish date should be dropped")
	}
	if !titles["boundary"] {
		t.Error("article exactly on the window boundary should be kept")
	}
	if titles["just outside"] {
		t.Error("article one second older than the boundary should be dropped")
	}
}

func TestCleanArticlesAssignsDateWhenMissing(t *testing.T) {
	n := newTestNormalizer(t)

	articles := []*models.RawArticle{
		{Title: "No date element on the page", URL: "https://example.com/a", Content: "body"},
	}
	cleaned := n.CleanArticles(articles)
	if len(cleaned) != 1 {
		t.Fatalf("article without a date must survive cleaning, got %d", len(cleaned))
	}

	parsed, err := time.Parse(time.RFC3339, cleaned[0].PublishDate)
	if err != nil {
		t.Fatalf("publish date not RFC3339: %q", cleaned[0].PublishDate)
	}
	if age := time.Since(parsed); age < 0 || age > time.Minute {
		t.Errorf("missing date should default to the current time, got %q", cleaned[0].PublishDate)
	}
}

func TestCleanArticlePromotesSummary(t *testing.T) {
	n := newTestNormalizer(t)

	article := &models.RawArticle{
		Title:          "Listing surge",
		ContentSummary: "<p>Inventory is up</p>",
		PublishDate:    "2 hours ago",
	}
	n.CleanArticle(article)

	if article.Content != "Inventory is up" {
		t.Errorf("summary should be promoted to content, got %q", article.Content)
	}
	if article.ContentSummary != "Inventory is up" {
		t.Errorf("summary should be cleaned in place, got %q", article.ContentSummary)
	}
	if _, err := time.Parse(time.RFC3339, article.PublishDate); err != nil {
		t.Errorf("publish date not normalized: %q", article.PublishDate)
	}
	if len(article.Keywords) == 0 {
		t.Error("keywords should be extracted from title and content")
	}
}
