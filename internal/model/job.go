package model

import (
	"context"
	"strings"
	"time"
)

// Job is the canonical representation of one posting at one source at the
// time it was fetched. Raw IDs are only unique within a source; identity
// across the pipeline is always the composite (Source, ID) key.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	URL          string    `json:"url"`
	Location     string    `json:"location"`
	City         string    `json:"city,omitempty"`
	Country      string    `json:"country"`
	PostedDate   string    `json:"posted_date,omitempty"`  // source-native date string
	UpdatedTime  string    `json:"updated_time,omitempty"` // source-native date string
	Source       string    `json:"source"`                 // e.g. "greenhouse:databricks"
	DiscoveredAt time.Time `json:"discovered_at"`          // first observation, carried across runs
	Description  string    `json:"description,omitempty"`
	Salary       string    `json:"salary,omitempty"`
	JobType      string    `json:"job_type,omitempty"`
	Department   string    `json:"department,omitempty"`
}

// Key returns the job's composite identity key.
func (j Job) Key() Key {
	return Key{Source: j.Source, ID: j.ID}
}

// ArchivedJob is a posting that disappeared from the live corpus.
type ArchivedJob struct {
	Job
	ArchivedAt time.Time `json:"archived_at"`
}

// Key uniquely identifies a posting across runs. Source labels never contain
// a slash, so the string form "source/id" round-trips.
type Key struct {
	Source string
	ID     string
}

func (k Key) String() string {
	return k.Source + "/" + k.ID
}

// ParseKey splits the string form of a composite key. The second return is
// false if the string has no source component.
func ParseKey(s string) (Key, bool) {
	source, id, ok := strings.Cut(s, "/")
	if !ok || source == "" {
		return Key{}, false
	}
	return Key{Source: source, ID: id}, true
}

// Source fetches postings from one job platform and normalizes them into
// canonical Jobs, with relevance and market-scope filters already applied.
// Fetch re-fetches on every call; results are sorted newest-first by the
// source's own date field.
type Source interface {
	Identity() string
	Fetch(ctx context.Context, query string, maxResults int) ([]Job, error)
}

// Notifier hands the per-run "new jobs" list to a distribution collaborator.
type Notifier interface {
	Notify(jobs []Job) error
}
