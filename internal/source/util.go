package source

import (
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"jobharvest/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// parseISO parses RFC 3339 timestamps and bare dates. Unparsable input maps
// to the zero time, which sorts as oldest.
func parseISO(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseUSDate parses the "January 2, 2006" style dates used by Amazon and
// SuccessFactors listings. Unparsable input maps to the zero time.
func parseUSDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// sortByRecency orders jobs newest-first by the per-job timestamp from ts.
// The sort is stable so records without a usable date keep their fetch order
// at the end.
func sortByRecency(jobs []model.Job, ts func(model.Job) time.Time) {
	sort.SliceStable(jobs, func(i, k int) bool {
		return ts(jobs[i]).After(ts(jobs[k]))
	})
}

// cityOf returns the first comma-separated component of a location string.
func cityOf(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

// capResults truncates jobs to maxResults when a positive cap is set.
func capResults(jobs []model.Job, maxResults int) []model.Job {
	if maxResults > 0 && len(jobs) > maxResults {
		return jobs[:maxResults]
	}
	return jobs
}
