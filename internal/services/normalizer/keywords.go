package normalizer

import (
	"regexp"
	"strings"
)

// Real estate keyword patterns. Each pattern groups equivalent terms across
// the languages the sources publish in; a match records the literal term so
// downstream consumers can see which variant appeared.
var keywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)房价|house price|home price`),
	regexp.MustCompile(`(?i)成交|sale|transaction`),
	regexp.MustCompile(`(?i)新规|regulation|policy`),
	regexp.MustCompile(`(?i)利率|interest rate|mortgage rate`),
	regexp.MustCompile(`(?i)市场|market`),
	regexp.MustCompile(`(?i)投资|investment`),
	regexp.MustCompile(`(?i)贷款|loan|mortgage`),
	regexp.MustCompile(`(?i)租金|rent|rental`),
	regexp.MustCompile(`(?i)供应|supply|inventory`),
	regexp.MustCompile(`(?i)需求|demand`),
}

const maxKeywords = 10

// ExtractKeywords scans text for real estate terms and returns the distinct
// matched terms in pattern order, capped at maxKeywords.
func (n *Normalizer) ExtractKeywords(text string) []string {
	if text == "" {
		return nil
	}

	var keywords []string
	seen := make(map[string]struct{})

	for _, pattern := range keywordPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			match = strings.ToLower(match)
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			keywords = append(keywords, match)
			if len(keywords) >= maxKeywords {
				return keywords
			}
		}
	}
	return keywords
}
