package normalizer

import (
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "http upgraded to https",
			input:    "http://example.com/news/article",
			expected: "https://example.com/news/article",
		},
		{
			name:     "host lowercased",
			input:    "https://Example.COM/News",
			expected: "https://example.com/News",
		},
		{
			name:     "query stripped",
			input:    "https://example.com/article?utm_source=feed&id=42",
			expected: "https://example.com/article",
		},
		{
			name:     "fragment stripped",
			input:    "https://example.com/article#comments",
			expected: "https://example.com/article",
		},
		{
			name:     "trailing slash stripped",
			input:    "https://example.com/article/",
			expected: "https://example.com/article",
		},
		{
			name:     "root slash preserved",
			input:    "https://example.com/",
			expected: "https://example.com/",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  https://example.com/a  ",
			expected: "https://example.com/a",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalURL(tt.input)
			if got != tt.expected {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalURLIdempotent(t *testing.T) {
	inputs := []string{
		"http://Example.com/path/?q=1#frag",
		"https://example.com/",
		"https://example.com/a/b/c///",
	}
	for _, input := range inputs {
		once := CanonicalURL(input)
		twice := CanonicalURL(once)
		if once != twice {
			t.Errorf("CanonicalURL not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestCanonicalURLEquivalence(t *testing.T) {
	// Variants that should all collapse to the same canonical form.
	variants := []string{
		"http://Example.com/news/story",
		"https://example.com/news/story/",
		"https://example.com/news/story?ref=home",
		"https://EXAMPLE.COM/news/story#top",
	}
	want := CanonicalURL(variants[0])
	for _, v := range variants[1:] {
		if got := CanonicalURL(v); got != want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestDedupBatch(t *testing.T) {
	logger := arbor.NewLogger()

	articles := []*models.RawArticle{
		{Title: "first", URL: "https://example.com/a"},
		{Title: "duplicate by scheme", URL: "http://example.com/a"},
		{Title: "duplicate by slash", URL: "https://example.com/a/"},
		{Title: "second", URL: "https://example.com/b"},
		{Title: "no url"},
	}

	result := DedupBatch(articles, logger)
	if len(result) != 3 {
		t.Fatalf("expected 3 articles after dedup, got %d", len(result))
	}
	if result[0].Title != "first" {
		t.Errorf("first occurrence should win, got %q", result[0].Title)
	}
	if result[1].Title != "second" {
		t.Errorf("expected second unique article, got %q", result[1].Title)
	}
	if result[2].Title != "no url" {
		t.Errorf("article without URL must be retained, got %q", result[2].Title)
	}
}
