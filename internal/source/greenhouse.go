package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jobharvest/internal/classify"
	"jobharvest/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64                  `json:"id"`
	Title       string                 `json:"title"`
	Location    greenhouseLocation     `json:"location"`
	AbsoluteURL string                 `json:"absolute_url"`
	UpdatedAt   string                 `json:"updated_at"`
	Content     string                 `json:"content"`
	Departments []greenhouseDepartment `json:"departments"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseDepartment struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// Greenhouse fetches postings from the Greenhouse public boards API.
// The whole board arrives in one response; relevance is matched against
// title and department names, market scope against the location text.
type Greenhouse struct {
	slug       string
	company    string
	country    string
	classifier *classify.Classifier
	client     *http.Client
	limiter    *HostLimiter
}

// NewGreenhouse creates a source for one Greenhouse board.
func NewGreenhouse(slug, company, country string, classifier *classify.Classifier, client *http.Client, limiter *HostLimiter) *Greenhouse {
	return &Greenhouse{
		slug:       slug,
		company:    company,
		country:    country,
		classifier: classifier,
		client:     client,
		limiter:    limiter,
	}
}

func (s *Greenhouse) Identity() string {
	return "greenhouse:" + s.slug
}

// Fetch retrieves the board, keeps relevant in-market postings, and returns
// them newest-first by updated_at.
func (s *Greenhouse) Fetch(ctx context.Context, query string, maxResults int) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, s.slug)

	if err := s.limiter.Wait(ctx, url); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", s.slug, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", s.slug, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", s.slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("greenhouse fetch for %s: unexpected status %d", s.slug, resp.StatusCode),
		}
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", s.slug, err)
	}

	var jobs []model.Job
	for _, gj := range ghResp.Jobs {
		if !s.classifier.InMarket(gj.Location.Name) {
			continue
		}

		var deptNames []string
		for _, d := range gj.Departments {
			deptNames = append(deptNames, d.Name)
		}
		if !s.classifier.Relevant(gj.Title, strings.Join(deptNames, " ")) {
			continue
		}

		job := model.Job{
			ID:          fmt.Sprintf("%d", gj.ID),
			Title:       gj.Title,
			Company:     s.company,
			URL:         gj.AbsoluteURL,
			Location:    gj.Location.Name,
			City:        cityOf(gj.Location.Name),
			Country:     s.country,
			UpdatedTime: gj.UpdatedAt,
			Source:      s.Identity(),
		}
		if len(deptNames) > 0 {
			job.Department = deptNames[0]
		}
		if gj.Content != "" {
			job.Description = extractText(gj.Content)
		}

		jobs = append(jobs, job)
	}

	sortByRecency(jobs, func(j model.Job) time.Time { return parseISO(j.UpdatedTime) })

	return capResults(jobs, maxResults), nil
}
