package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"jobharvest/internal/classify"
	"jobharvest/internal/model"
)

const (
	smartRecruitersBaseURL  = "https://api.smartrecruiters.com/v1/companies"
	smartRecruitersPageSize = 100
)

// smartRecruitersPosting represents a single posting in the listing response.
type smartRecruitersPosting struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	ReleasedDate string                    `json:"releasedDate"`
	Location     smartRecruitersLocation   `json:"location"`
	Department   smartRecruitersDepartment `json:"department"`
}

type smartRecruitersLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type smartRecruitersDepartment struct {
	Label string `json:"label"`
}

// smartRecruitersResponse is the paginated postings listing response.
type smartRecruitersResponse struct {
	Content    []smartRecruitersPosting `json:"content"`
	TotalFound int                      `json:"totalFound"`
}

// smartRecruitersDetail is the posting detail response, used only for the
// best-effort description enrichment.
type smartRecruitersDetail struct {
	JobAd struct {
		Sections struct {
			JobDescription struct {
				Text string `json:"text"`
			} `json:"jobDescription"`
		} `json:"sections"`
	} `json:"jobAd"`
}

// SmartRecruiters fetches postings from the SmartRecruiters public API,
// paginating through the full listing. For each kept posting it attempts a
// detail fetch for the description; a failed detail fetch yields a record
// without a description, never an aborted record.
type SmartRecruiters struct {
	slug       string
	company    string
	country    string
	classifier *classify.Classifier
	client     *http.Client
	limiter    *HostLimiter
}

// NewSmartRecruiters creates a source for one SmartRecruiters company board.
func NewSmartRecruiters(slug, company, country string, classifier *classify.Classifier, client *http.Client, limiter *HostLimiter) *SmartRecruiters {
	return &SmartRecruiters{
		slug:       slug,
		company:    company,
		country:    country,
		classifier: classifier,
		client:     client,
		limiter:    limiter,
	}
}

func (s *SmartRecruiters) Identity() string {
	return "smartrecruiters:" + s.slug
}

// Fetch paginates the postings listing, keeps relevant in-market postings,
// enriches them with descriptions, and returns them newest-first by
// releasedDate.
func (s *SmartRecruiters) Fetch(ctx context.Context, query string, maxResults int) ([]model.Job, error) {
	var kept []smartRecruitersPosting
	offset := 0

	for {
		page, err := s.fetchPage(ctx, offset)
		if err != nil {
			// First page failing is a source error; later pages degrade to
			// whatever was already collected.
			if offset == 0 {
				return nil, err
			}
			break
		}
		if len(page.Content) == 0 {
			break
		}

		for _, p := range page.Content {
			location := fmt.Sprintf("%s, %s", p.Location.City, p.Location.Country)
			if !s.classifier.InMarket(location) {
				continue
			}
			if !s.classifier.Relevant(p.Name, p.Department.Label) {
				continue
			}
			kept = append(kept, p)
		}

		if maxResults > 0 && len(kept) >= maxResults {
			break
		}
		offset += smartRecruitersPageSize
		if offset >= page.TotalFound {
			break
		}
	}

	jobs := make([]model.Job, 0, len(kept))
	for _, p := range kept {
		job := model.Job{
			ID:         p.ID,
			Title:      p.Name,
			Company:    s.company,
			URL:        fmt.Sprintf("https://careers.smartrecruiters.com/%s/%s", s.slug, p.ID),
			Location:   fmt.Sprintf("%s, %s", p.Location.City, p.Location.Country),
			City:       p.Location.City,
			Country:    s.country,
			PostedDate: p.ReleasedDate,
			Source:     s.Identity(),
			Department: p.Department.Label,
		}
		// Best-effort enrichment.
		if desc, err := s.fetchDescription(ctx, p.ID); err == nil {
			job.Description = desc
		}
		jobs = append(jobs, job)
	}

	sortByRecency(jobs, func(j model.Job) time.Time { return parseISO(j.PostedDate) })

	return capResults(jobs, maxResults), nil
}

func (s *SmartRecruiters) fetchPage(ctx context.Context, offset int) (*smartRecruitersResponse, error) {
	url := fmt.Sprintf("%s/%s/postings?limit=%d&offset=%d", smartRecruitersBaseURL, s.slug, smartRecruitersPageSize, offset)

	if err := s.limiter.Wait(ctx, url); err != nil {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", s.slug, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", s.slug, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", s.slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("smartrecruiters fetch for %s: unexpected status %d", s.slug, resp.StatusCode),
		}
	}

	var page smartRecruitersResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("smartrecruiters fetch for %s: %w", s.slug, err)
	}
	return &page, nil
}

func (s *SmartRecruiters) fetchDescription(ctx context.Context, postingID string) (string, error) {
	if postingID == "" {
		return "", fmt.Errorf("empty posting id")
	}
	url := fmt.Sprintf("%s/%s/postings/%s", smartRecruitersBaseURL, s.slug, postingID)

	if err := s.limiter.Wait(ctx, url); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("posting detail status %d", resp.StatusCode)
	}

	var detail smartRecruitersDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return "", err
	}
	return extractText(detail.JobAd.Sections.JobDescription.Text), nil
}
