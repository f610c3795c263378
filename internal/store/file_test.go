package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobharvest/internal/model"
)

func TestCorpusFile_RoundTrip(t *testing.T) {
	files, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	jobs := []model.Job{
		{ID: "1", Title: "ML Engineer", Source: "greenhouse:acme", DiscoveredAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		{ID: "2", Title: "Data Scientist", Source: "amazon", DiscoveredAt: time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)},
	}
	if err := files.Corpus.Save(jobs); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := files.Corpus.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load returned %d jobs, want 2", len(got))
	}
	if got[0].Key() != jobs[0].Key() || !got[0].DiscoveredAt.Equal(jobs[0].DiscoveredAt) {
		t.Errorf("first job = %+v, want %+v", got[0], jobs[0])
	}
}

func TestCorpusFile_MissingIsEmpty(t *testing.T) {
	s := NewCorpusFile(filepath.Join(t.TempDir(), "jobs.json"), nil)
	jobs, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("Load of missing file = %d jobs, want 0", len(jobs))
	}
}

func TestCorpusFile_CorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewCorpusFile(path, nil)
	jobs, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("Load of corrupt file = %d jobs, want 0 (cold start)", len(jobs))
	}
}

func TestSave_AtomicReplaceKeepsOldStateOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.json")
	s := NewCorpusFile(path, nil)

	if err := s.Save([]model.Job{{ID: "1", Source: "amazon"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Point the store at a path whose parent does not exist so the temp-file
	// creation fails before anything touches the original file.
	bad := NewCorpusFile(filepath.Join(dir, "missing", "jobs.json"), nil)
	if err := bad.Save([]model.Job{{ID: "2", Source: "amazon"}}); err == nil {
		t.Fatal("Save into missing dir: expected error")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("failed save modified the previous on-disk state")
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("stray temp file left behind: %s", e.Name())
		}
	}
}

func TestSeenFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_jobs.json")
	s := NewSeenFile(path, nil)

	keys := map[model.Key]struct{}{
		{Source: "greenhouse:acme", ID: "1"}: {},
		{Source: "amazon", ID: "42"}:         {},
	}
	when := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	if err := s.Save(keys, when); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"seen_ids"`) || !strings.Contains(string(data), `"last_updated"`) {
		t.Errorf("seen file missing expected fields: %s", data)
	}
	if !strings.Contains(string(data), when.Format(time.RFC3339)) {
		t.Errorf("seen file missing timestamp: %s", data)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load returned %d keys, want 2", len(got))
	}
	if _, ok := got[model.Key{Source: "greenhouse:acme", ID: "1"}]; !ok {
		t.Error("greenhouse key missing after round trip")
	}
}

func TestSeenFile_SkipsMalformedIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_jobs.json")
	content := `{"seen_ids": ["amazon/42", "missing-separator"], "last_updated": "2026-08-30T09:00:00Z"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewSeenFile(path, nil)
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Load returned %d keys, want 1 (malformed id skipped)", len(got))
	}
}

func TestArchiveFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archived_jobs.json")
	s := NewArchiveFile(path, nil)

	when := time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC)
	in := []model.ArchivedJob{
		{Job: model.Job{ID: "1", Title: "Gone Role", Source: "greenhouse:acme"}, ArchivedAt: when},
	}
	if err := s.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Key() != in[0].Key() || !got[0].ArchivedAt.Equal(when) {
		t.Errorf("round trip = %+v, want %+v", got, in)
	}
}
