package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var firstNumberPattern = regexp.MustCompile(`(\d+)`)

// NormalizeDate converts a scraped date string to RFC 3339 UTC. Sources emit
// everything from ISO timestamps to relative phrases like "3 hours ago", so
// relative forms are resolved first and anything else goes through the
// general parser. The boolean is false when no reading succeeds.
func (n *Normalizer) NormalizeDate(raw string) (string, bool) {
	parsed, ok := ResolveDate(raw)
	if !ok {
		if strings.TrimSpace(raw) != "" {
			n.logger.Warn().Str("date", raw).Msg("Failed to parse publish date")
		}
		return "", false
	}
	return parsed.Format(time.RFC3339), true
}

// ResolveDate parses a scraped date string into a UTC instant, resolving
// relative phrases before falling through to the general parser.
func ResolveDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	now := time.Now().UTC()
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(lower, "now"):
		return now, true
	case strings.Contains(lower, "minute"):
		return now.Add(-time.Duration(firstNumber(raw, 0)) * time.Minute), true
	case strings.Contains(lower, "hour"):
		return now.Add(-time.Duration(firstNumber(raw, 0)) * time.Hour), true
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1), true
	case strings.Contains(lower, "day"):
		return now.AddDate(0, 0, -firstNumber(raw, 1)), true
	case strings.Contains(lower, "week"):
		return now.AddDate(0, 0, -7*firstNumber(raw, 1)), true
	case strings.Contains(lower, "month"):
		return now.AddDate(0, 0, -30*firstNumber(raw, 1)), true
	}

	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return parsed.UTC(), true
}

func firstNumber(s string, fallback int) int {
	m := firstNumberPattern.FindString(s)
	if m == "" {
		return fallback
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return fallback
	}
	return v
}
