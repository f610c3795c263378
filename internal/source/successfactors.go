package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobharvest/internal/classify"
	"jobharvest/internal/model"
)

const successFactorsPageSize = 25

// Safety cap on pagination depth; SuccessFactors search never needs more
// for a single country facet.
const successFactorsMaxOffset = 200

var sfJobIDRegex = regexp.MustCompile(`/(\d+)/?$`)

// SuccessFactors scrapes a SuccessFactors-hosted career site (e.g.
// jobs.sap.com). The board renders server-side HTML, so listings are parsed
// from the standard data-row table markup. The search request carries a
// country facet, so results are inherently within the target market.
type SuccessFactors struct {
	name        string
	baseURL     string
	countryCode string // ISO alpha-2, e.g. "DE"
	country     string
	classifier  *classify.Classifier
	client      *http.Client
	limiter     *HostLimiter
}

// NewSuccessFactors creates a source for one SuccessFactors career site.
func NewSuccessFactors(name, baseURL, countryCode, country string, classifier *classify.Classifier, client *http.Client, limiter *HostLimiter) *SuccessFactors {
	return &SuccessFactors{
		name:        name,
		baseURL:     strings.TrimRight(baseURL, "/") + "/",
		countryCode: countryCode,
		country:     country,
		classifier:  classifier,
		client:      client,
		limiter:     limiter,
	}
}

func (s *SuccessFactors) Identity() string {
	return "successfactors:" + strings.ToLower(strings.ReplaceAll(s.name, " ", ""))
}

// Fetch pages through the search results, keeps relevant postings, and
// returns them newest-first by the listed date.
func (s *SuccessFactors) Fetch(ctx context.Context, query string, maxResults int) ([]model.Job, error) {
	var jobs []model.Job

	for offset := 0; offset < successFactorsMaxOffset; offset += successFactorsPageSize {
		page, err := s.fetchPage(ctx, query, offset)
		if err != nil {
			if offset == 0 {
				return nil, err
			}
			break
		}
		if len(page) == 0 {
			break
		}

		for _, j := range page {
			if !s.classifier.Relevant(j.Title) {
				continue
			}
			jobs = append(jobs, j)
		}

		if maxResults > 0 && len(jobs) >= maxResults {
			break
		}
		if len(page) < successFactorsPageSize {
			break
		}
	}

	sortByRecency(jobs, func(j model.Job) time.Time { return parseUSDate(j.PostedDate) })

	return capResults(jobs, maxResults), nil
}

func (s *SuccessFactors) fetchPage(ctx context.Context, query string, offset int) ([]model.Job, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("optionsFacetsDD_country", s.countryCode)
	params.Set("startrow", strconv.Itoa(offset))
	pageURL := s.baseURL + "?" + params.Encode()

	if err := s.limiter.Wait(ctx, pageURL); err != nil {
		return nil, fmt.Errorf("successfactors fetch for %s: %w", s.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("successfactors fetch for %s: %w", s.name, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("successfactors fetch for %s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("successfactors fetch for %s: unexpected status %d", s.name, resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("successfactors parse for %s: %w", s.name, err)
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("successfactors fetch for %s: %w", s.name, err)
	}
	siteRoot := base.Scheme + "://" + base.Host

	var jobs []model.Job
	doc.Find("tr.data-row").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a.jobTitle-link").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if title == "" || !ok {
			return
		}

		m := sfJobIDRegex.FindStringSubmatch(href)
		if m == nil {
			return
		}

		location := strings.TrimSpace(row.Find("span.jobLocation").First().Text())
		date := strings.TrimSpace(row.Find("span.jobDate").First().Text())

		jobs = append(jobs, model.Job{
			ID:         m[1],
			Title:      title,
			Company:    s.name,
			URL:        siteRoot + href,
			Location:   location,
			City:       cityOf(location),
			Country:    s.country,
			PostedDate: date,
			Source:     s.Identity(),
		})
	})

	return jobs, nil
}
