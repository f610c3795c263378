package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"jobharvest/internal/model"
)

// On-disk filenames inside the data directory.
const (
	corpusFilename  = "jobs.json"
	archiveFilename = "archived_jobs.json"
	seenFilename    = "seen_jobs.json"
)

// Files bundles the three file-backed stores rooted at one data directory.
type Files struct {
	Corpus  *CorpusFile
	Archive *ArchiveFile
	Seen    *SeenFile
}

// Open creates the data directory if needed and returns file stores for the
// corpus, archive, and seen-set.
func Open(dir string, logger *slog.Logger) (*Files, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Files{
		Corpus:  &CorpusFile{path: filepath.Join(dir, corpusFilename), logger: logger},
		Archive: &ArchiveFile{path: filepath.Join(dir, archiveFilename), logger: logger},
		Seen:    &SeenFile{path: filepath.Join(dir, seenFilename), logger: logger},
	}, nil
}

// CorpusFile stores the corpus as a JSON array of canonical records.
type CorpusFile struct {
	path   string
	logger *slog.Logger
}

func NewCorpusFile(path string, logger *slog.Logger) *CorpusFile {
	return &CorpusFile{path: path, logger: logger}
}

func (s *CorpusFile) Load() ([]model.Job, error) {
	var jobs []model.Job
	if !readJSON(s.path, &jobs, s.logger) {
		return nil, nil
	}
	return jobs, nil
}

func (s *CorpusFile) Save(jobs []model.Job) error {
	if jobs == nil {
		jobs = []model.Job{}
	}
	return writeJSONAtomic(s.path, jobs)
}

// ArchiveFile stores archived postings as a JSON array.
type ArchiveFile struct {
	path   string
	logger *slog.Logger
}

func NewArchiveFile(path string, logger *slog.Logger) *ArchiveFile {
	return &ArchiveFile{path: path, logger: logger}
}

func (s *ArchiveFile) Load() ([]model.ArchivedJob, error) {
	var jobs []model.ArchivedJob
	if !readJSON(s.path, &jobs, s.logger) {
		return nil, nil
	}
	return jobs, nil
}

func (s *ArchiveFile) Save(jobs []model.ArchivedJob) error {
	if jobs == nil {
		jobs = []model.ArchivedJob{}
	}
	return writeJSONAtomic(s.path, jobs)
}

// seenFile is the on-disk shape of the seen-set.
type seenFile struct {
	SeenIDs     []string `json:"seen_ids"`
	LastUpdated string   `json:"last_updated"`
}

// SeenFile stores the seen-set as {"seen_ids": [...], "last_updated": "..."}.
type SeenFile struct {
	path   string
	logger *slog.Logger
}

func NewSeenFile(path string, logger *slog.Logger) *SeenFile {
	return &SeenFile{path: path, logger: logger}
}

func (s *SeenFile) Load() (map[model.Key]struct{}, error) {
	var raw seenFile
	keys := make(map[model.Key]struct{})
	if !readJSON(s.path, &raw, s.logger) {
		return keys, nil
	}
	for _, id := range raw.SeenIDs {
		key, ok := model.ParseKey(id)
		if !ok {
			if s.logger != nil {
				s.logger.Warn("skipping malformed seen id", "id", id)
			}
			continue
		}
		keys[key] = struct{}{}
	}
	return keys, nil
}

func (s *SeenFile) Save(keys map[model.Key]struct{}, updatedAt time.Time) error {
	ids := make([]string, 0, len(keys))
	for k := range keys {
		ids = append(ids, k.String())
	}
	slices.Sort(ids) // stable file contents across runs
	return writeJSONAtomic(s.path, seenFile{
		SeenIDs:     ids,
		LastUpdated: updatedAt.Format(time.RFC3339),
	})
}

// readJSON reads and unmarshals path into v. Returns false if the file is
// missing or corrupt; corruption is logged and treated as a cold start, not
// an error.
func readJSON(path string, v any, logger *slog.Logger) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) && logger != nil {
			logger.Warn("unreadable state file, starting empty", "path", path, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		if logger != nil {
			logger.Warn("corrupt state file, starting empty", "path", path, "error", err)
		}
		return false
	}
	return true
}

// writeJSONAtomic writes v as indented JSON to a temp file in the target
// directory and renames it over path, so a failed write never clobbers the
// previous good state.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
