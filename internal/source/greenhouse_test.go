package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGreenhouseFetch_FiltersAndNormalizes(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 12345,
				"title": "Machine Learning Engineer",
				"location": {"name": "Berlin, Germany"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
				"updated_at": "2026-02-13T10:00:00Z",
				"content": "&lt;p&gt;Train models.&lt;/p&gt;",
				"departments": [{"name": "AI Platform"}]
			},
			{
				"id": 22222,
				"title": "Machine Learning Engineer",
				"location": {"name": "New York, NY"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/22222",
				"updated_at": "2026-02-13T11:00:00Z"
			},
			{
				"id": 33333,
				"title": "Account Executive",
				"location": {"name": "Berlin, Germany"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/33333",
				"updated_at": "2026-02-13T12:00:00Z"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := NewGreenhouse("acme", "Acme Corp", "Germany", testClassifier(), testClient(srv), testLimiter())

	jobs, err := s.Fetch(context.Background(), "machine learning", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job after filtering, got %d", len(jobs))
	}

	j := jobs[0]
	if j.ID != "12345" {
		t.Errorf("ID = %s, want 12345", j.ID)
	}
	if j.Source != "greenhouse:acme" {
		t.Errorf("Source = %s, want greenhouse:acme", j.Source)
	}
	if j.Company != "Acme Corp" {
		t.Errorf("Company = %s", j.Company)
	}
	if j.City != "Berlin" {
		t.Errorf("City = %s, want Berlin", j.City)
	}
	if j.Country != "Germany" {
		t.Errorf("Country = %s", j.Country)
	}
	if j.Department != "AI Platform" {
		t.Errorf("Department = %s", j.Department)
	}
	if j.Description != "Train models." {
		t.Errorf("Description = %q", j.Description)
	}
	if j.UpdatedTime != "2026-02-13T10:00:00Z" {
		t.Errorf("UpdatedTime = %q", j.UpdatedTime)
	}
}

func TestGreenhouseFetch_DepartmentMatchCountsAsRelevant(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 1,
				"title": "Staff Engineer",
				"location": {"name": "Munich, Germany"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/1",
				"departments": [{"name": "Data Science"}]
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := NewGreenhouse("acme", "Acme Corp", "Germany", testClassifier(), testClient(srv), testLimiter())
	jobs, err := s.Fetch(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected department keyword to match, got %d jobs", len(jobs))
	}
}

func TestGreenhouseFetch_SortsNewestFirstAndCaps(t *testing.T) {
	payload := `{
		"jobs": [
			{"id": 1, "title": "ML Engineer I", "location": {"name": "Berlin"}, "absolute_url": "u1", "updated_at": "2026-02-10T10:00:00Z"},
			{"id": 2, "title": "ML Engineer II", "location": {"name": "Berlin"}, "absolute_url": "u2", "updated_at": "2026-02-13T10:00:00Z"},
			{"id": 3, "title": "ML Engineer III", "location": {"name": "Berlin"}, "absolute_url": "u3", "updated_at": "not a date"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	s := NewGreenhouse("acme", "Acme Corp", "Germany", testClassifier(), testClient(srv), testLimiter())
	jobs, err := s.Fetch(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected maxResults cap of 2, got %d", len(jobs))
	}
	if jobs[0].ID != "2" || jobs[1].ID != "1" {
		t.Errorf("order = [%s %s], want [2 1] (unparsable date sorts oldest)", jobs[0].ID, jobs[1].ID)
	}
}

func TestGreenhouseFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewGreenhouse("fail-co", "Fail Co", "Germany", testClassifier(), testClient(srv), testLimiter())
	if _, err := s.Fetch(context.Background(), "", 0); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestGreenhouseFetch_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer srv.Close()

	s := NewGreenhouse("bad-co", "Bad Co", "Germany", testClassifier(), testClient(srv), testLimiter())
	if _, err := s.Fetch(context.Background(), "", 0); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}
