package scraper

import (
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

func TestNewsbreakFilterLast24Hours(t *testing.T) {
	n := &Newsbreak{site: site{logger: arbor.NewLogger()}}
	now := time.Now().UTC()

	articles := []*models.RawArticle{
		{Title: "fresh relative", PublishDate: "5 hours ago"},
		{Title: "stale relative", PublishDate: "3 days ago"},
		{Title: "fresh absolute", PublishDate: now.Add(-2 * time.Hour).Format(time.RFC3339)},
		{Title: "stale absolute", PublishDate: now.Add(-48 * time.Hour).Format(time.RFC3339)},
		{Title: "unparseable", PublishDate: "mystery"},
		{Title: "no date"},
	}

	filtered := n.filterLast24Hours(articles)

	titles := map[string]bool{}
	for _, a := range filtered {
		titles[a.Title] = true
	}

	if !titles["fresh relative"] {
		t.Error("relative phrase inside 24 hours should be kept")
	}
	if titles["stale relative"] {
		t.Error("relative phrase older than 24 hours must be filtered")
	}
	if !titles["fresh absolute"] {
		t.Error("recent absolute date should be kept")
	}
	if titles["stale absolute"] {
		t.Error("absolute date older than 24 hours must be filtered")
	}
	if !titles["unparseable"] {
		t.Error("unparseable date should keep the article")
	}
	if titles["no date"] {
		t.Error("article without a date should be dropped from the feed")
	}
}

func TestCityNameFromPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/beverly-hills-ca", "Beverly Hills Ca"},
		{"/austin-tx", "Austin Tx"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cityNameFromPath(tt.in); got != tt.want {
			t.Errorf("cityNameFromPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
