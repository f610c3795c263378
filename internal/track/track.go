// Package track maintains the persistent set of composite keys that have
// already been notified about. Keys only ever move Unseen → Seen and are
// never evicted, so a posting is reported as new at most once in its
// lifetime, even after it is archived.
package track

import (
	"fmt"
	"time"

	"jobharvest/internal/model"
	"jobharvest/internal/store"
)

// Tracker computes the "new since last run" subset of a corpus and records
// notified keys. It is a single-writer: one Tracker owns the seen-set file
// for the duration of a run.
type Tracker struct {
	store store.Seen
	seen  map[model.Key]struct{}
	now   func() time.Time
}

// NewTracker loads the persisted seen-set. A missing or corrupt file loads
// as empty.
func NewTracker(s store.Seen) (*Tracker, error) {
	seen, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("load seen set: %w", err)
	}
	return &Tracker{store: s, seen: seen, now: time.Now}, nil
}

// ComputeNew returns the records whose composite keys are not in the
// seen-set, preserving the corpus order.
func (t *Tracker) ComputeNew(corpus []model.Job) []model.Job {
	var fresh []model.Job
	for _, j := range corpus {
		if _, ok := t.seen[j.Key()]; !ok {
			fresh = append(fresh, j)
		}
	}
	return fresh
}

// MarkSeen unions the given records' keys into the seen-set and persists it
// immediately. Callers must invoke this directly after the notification
// attempt, not batched with unrelated work.
func (t *Tracker) MarkSeen(jobs []model.Job) error {
	for _, j := range jobs {
		t.seen[j.Key()] = struct{}{}
	}
	return t.persist()
}

// Initialize marks every record currently in the corpus as seen without
// notifying. Meant for first-time setup so historical postings are not all
// reported as new on the first real run.
func (t *Tracker) Initialize(corpus []model.Job) error {
	for _, j := range corpus {
		t.seen[j.Key()] = struct{}{}
	}
	return t.persist()
}

// Len returns the number of keys in the seen-set.
func (t *Tracker) Len() int {
	return len(t.seen)
}

func (t *Tracker) persist() error {
	if err := t.store.Save(t.seen, t.now()); err != nil {
		return fmt.Errorf("save seen set: %w", err)
	}
	return nil
}
