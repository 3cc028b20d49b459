package normalizer

import (
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/rstatelabs/playnews/internal/models"
)

// CanonicalURL reduces a URL to the form used for duplicate detection:
// https scheme for http(s) URLs, lowercased host, no query, no fragment,
// and no trailing slash except on the bare root path. Two URLs that
// canonicalize to the same string are treated as the same article.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		// Degrade to string surgery so a malformed URL still dedups
		// consistently against itself.
		s := raw
		if i := strings.Index(s, "#"); i >= 0 {
			s = s[:i]
		}
		if i := strings.Index(s, "?"); i >= 0 {
			s = s[:i]
		}
		return strings.TrimRight(s, "/")
	}

	scheme := u.Scheme
	if scheme == "http" {
		scheme = "https"
	}

	path := u.EscapedPath()
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}

	canonical := url.URL{
		Scheme: scheme,
		Host:   strings.ToLower(u.Host),
		Path:   path,
	}
	return canonical.String()
}

// DedupBatch removes within-batch duplicates by canonical URL, keeping the
// first occurrence. Articles without a URL cannot be deduplicated and are
// retained as-is.
func DedupBatch(articles []*models.RawArticle, logger arbor.ILogger) []*models.RawArticle {
	seen := make(map[string]struct{}, len(articles))
	result := make([]*models.RawArticle, 0, len(articles))

	for _, article := range articles {
		if article.URL == "" {
			logger.Warn().Str("title", article.Title).Msg("Article has no URL, keeping without dedup")
			result = append(result, article)
			continue
		}

		key := CanonicalURL(article.URL)
		if _, dup := seen[key]; dup {
			logger.Debug().Str("url", article.URL).Msg("Dropping duplicate article within batch")
			continue
		}
		seen[key] = struct{}{}
		result = append(result, article)
	}

	if dropped := len(articles) - len(result); dropped > 0 {
		logger.Info().Int("dropped", dropped).Int("kept", len(result)).Msg("Batch dedup complete")
	}
	return result
}
