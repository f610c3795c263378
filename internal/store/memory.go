package store

import (
	"maps"
	"slices"
	"time"

	"jobharvest/internal/model"
)

// In-memory stores used by tests and dry runs. SaveErr, when set, makes the
// next Save fail, for exercising write-failure paths.

type MemCorpus struct {
	Jobs    []model.Job
	SaveErr error
}

func (m *MemCorpus) Load() ([]model.Job, error) {
	return slices.Clone(m.Jobs), nil
}

func (m *MemCorpus) Save(jobs []model.Job) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Jobs = slices.Clone(jobs)
	return nil
}

type MemArchive struct {
	Jobs    []model.ArchivedJob
	SaveErr error
}

func (m *MemArchive) Load() ([]model.ArchivedJob, error) {
	return slices.Clone(m.Jobs), nil
}

func (m *MemArchive) Save(jobs []model.ArchivedJob) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Jobs = slices.Clone(jobs)
	return nil
}

type MemSeen struct {
	Keys        map[model.Key]struct{}
	LastUpdated time.Time
	SaveErr     error
}

func (m *MemSeen) Load() (map[model.Key]struct{}, error) {
	out := make(map[model.Key]struct{}, len(m.Keys))
	maps.Copy(out, m.Keys)
	return out, nil
}

func (m *MemSeen) Save(keys map[model.Key]struct{}, updatedAt time.Time) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Keys = make(map[model.Key]struct{}, len(keys))
	maps.Copy(m.Keys, keys)
	m.LastUpdated = updatedAt
	return nil
}
