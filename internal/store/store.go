// Package store persists the three durable artifacts of the pipeline: the
// live corpus, the archive of disappeared postings, and the seen-set of
// already-notified keys. Reads degrade to empty state on missing or corrupt
// files (cold start); writes are atomic whole-file replaces and fatal for
// the run if they fail.
package store

import (
	"time"

	"jobharvest/internal/model"
)

// Corpus persists the current believed-live set of postings.
type Corpus interface {
	Load() ([]model.Job, error)
	Save(jobs []model.Job) error
}

// Archive persists postings that disappeared from the corpus.
type Archive interface {
	Load() ([]model.ArchivedJob, error)
	Save(jobs []model.ArchivedJob) error
}

// Seen persists the set of composite keys already notified about.
type Seen interface {
	Load() (map[model.Key]struct{}, error)
	Save(keys map[model.Key]struct{}, updatedAt time.Time) error
}
