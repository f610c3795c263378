package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobharvest/internal/classify"
	"jobharvest/internal/model"
)

const (
	amazonBaseURL  = "https://www.amazon.jobs/en/search.json"
	amazonPageSize = 100
)

// amazonJob represents a single job in the Amazon search API response.
type amazonJob struct {
	IDIcims          string `json:"id_icims"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	City             string `json:"city"`
	PostedDate       string `json:"posted_date"`
	UpdatedTime      string `json:"updated_time"`
	JobScheduleType  string `json:"job_schedule_type"`
	DescriptionShort string `json:"description_short"`
}

// amazonResponse is the top-level Amazon search API response.
type amazonResponse struct {
	Jobs []amazonJob `json:"jobs"`
	Hits int         `json:"hits"`
}

// Amazon fetches jobs from the Amazon search API. The request carries a
// normalized country code facet, so every result is inherently within the
// target market and no location check is applied.
type Amazon struct {
	countryCode string // ISO alpha-3, e.g. "DEU"
	country     string
	classifier  *classify.Classifier
	client      *http.Client
	limiter     *HostLimiter
}

// NewAmazon creates the Amazon search source for one country facet.
func NewAmazon(countryCode, country string, classifier *classify.Classifier, client *http.Client, limiter *HostLimiter) *Amazon {
	return &Amazon{
		countryCode: countryCode,
		country:     country,
		classifier:  classifier,
		client:      client,
		limiter:     limiter,
	}
}

func (s *Amazon) Identity() string {
	return "amazon"
}

// Fetch paginates the search API for the query, keeps relevant postings,
// and returns them newest-first by posted_date.
func (s *Amazon) Fetch(ctx context.Context, query string, maxResults int) ([]model.Job, error) {
	var jobs []model.Job
	offset := 0

	for {
		page, err := s.fetchPage(ctx, query, offset)
		if err != nil {
			if offset == 0 {
				return nil, err
			}
			break
		}
		if len(page.Jobs) == 0 {
			break
		}

		for _, aj := range page.Jobs {
			if !s.classifier.Relevant(aj.Title, aj.DescriptionShort) {
				continue
			}
			jobs = append(jobs, model.Job{
				ID:          aj.IDIcims,
				Title:       aj.Title,
				Company:     "Amazon",
				URL:         fmt.Sprintf("https://www.amazon.jobs/en/jobs/%s", aj.IDIcims),
				Location:    aj.Location,
				City:        aj.City,
				Country:     s.country,
				PostedDate:  aj.PostedDate,
				UpdatedTime: aj.UpdatedTime,
				Source:      s.Identity(),
				JobType:     aj.JobScheduleType,
				Description: aj.DescriptionShort,
			})
		}

		if maxResults > 0 && len(jobs) >= maxResults {
			break
		}
		offset += amazonPageSize
		if offset >= page.Hits {
			break
		}
	}

	sortByRecency(jobs, func(j model.Job) time.Time { return parseUSDate(j.PostedDate) })

	return capResults(jobs, maxResults), nil
}

func (s *Amazon) fetchPage(ctx context.Context, query string, offset int) (*amazonResponse, error) {
	params := url.Values{}
	params.Set("base_query", query)
	params.Set("normalized_country_code[]", s.countryCode)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("result_limit", strconv.Itoa(amazonPageSize))
	params.Set("sort", "recent")
	pageURL := amazonBaseURL + "?" + params.Encode()

	if err := s.limiter.Wait(ctx, pageURL); err != nil {
		return nil, fmt.Errorf("amazon fetch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("amazon fetch: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amazon fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("amazon fetch: unexpected status %d", resp.StatusCode),
		}
	}

	var page amazonResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("amazon fetch: %w", err)
	}
	return &page, nil
}
