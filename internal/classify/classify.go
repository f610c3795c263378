package classify

import "strings"

// Classifier decides whether a raw posting is relevant (keyword match) and
// whether it is in the target market (place-name match). Both checks are
// case-insensitive substring heuristics: deterministic, fail-closed on
// missing text, and deliberately not NLP.
type Classifier struct {
	keywords  []string
	locations []string
}

// New returns a classifier over the given keyword and place-name token
// lists. Tokens are matched case-insensitively.
func New(keywords, locations []string) *Classifier {
	return &Classifier{
		keywords:  lowerAll(keywords),
		locations: lowerAll(locations),
	}
}

// Relevant reports whether any keyword appears in the concatenation of the
// given text fields (typically title plus department or a description
// snippet). Empty input never matches.
func (c *Classifier) Relevant(fields ...string) bool {
	text := strings.ToLower(strings.Join(fields, " "))
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, kw := range c.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// InMarket reports whether the location text contains any target place-name
// token. Sources whose listings are inherently confined to the target market
// (country-faceted queries) skip this check entirely.
func (c *Classifier) InMarket(location string) bool {
	loc := strings.ToLower(location)
	if strings.TrimSpace(loc) == "" {
		return false
	}
	for _, token := range c.locations {
		if strings.Contains(loc, token) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
