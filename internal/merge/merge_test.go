package merge

import (
	"testing"
	"time"

	"jobharvest/internal/model"
)

var (
	t0  = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
)

func job(source, id, title string) model.Job {
	return model.Job{ID: id, Source: source, Title: title}
}

func jobAt(source, id, title string, discovered time.Time) model.Job {
	j := job(source, id, title)
	j.DiscoveredAt = discovered
	return j
}

func TestMerge_CarriesForwardDiscoveredAt(t *testing.T) {
	prior := []model.Job{jobAt("greenhouse:acme", "1", "ML Engineer", t0)}
	batch := []model.Job{job("greenhouse:acme", "1", "ML Engineer (Senior)")}

	res := Merge(prior, nil, batch, now)

	if len(res.Corpus) != 1 {
		t.Fatalf("corpus size = %d, want 1", len(res.Corpus))
	}
	got := res.Corpus[0]
	if !got.DiscoveredAt.Equal(t0) {
		t.Errorf("DiscoveredAt = %v, want prior value %v", got.DiscoveredAt, t0)
	}
	if got.Title != "ML Engineer (Senior)" {
		t.Errorf("Title = %q, want the fresh record's fields", got.Title)
	}
	if res.Carried != 1 || res.New != 0 || res.Archived != 0 {
		t.Errorf("counts = %+v, want carried=1", res)
	}
}

func TestMerge_NewKeyGetsRunTime(t *testing.T) {
	res := Merge(nil, nil, []model.Job{job("amazon", "42", "Data Scientist")}, now)

	if len(res.Corpus) != 1 {
		t.Fatalf("corpus size = %d, want 1", len(res.Corpus))
	}
	if !res.Corpus[0].DiscoveredAt.Equal(now) {
		t.Errorf("DiscoveredAt = %v, want run time %v", res.Corpus[0].DiscoveredAt, now)
	}
	if res.New != 1 {
		t.Errorf("New = %d, want 1", res.New)
	}
}

func TestMerge_BareIDsDoNotCollideAcrossSources(t *testing.T) {
	prior := []model.Job{jobAt("greenhouse:acme", "1", "ML Engineer", t0)}
	batch := []model.Job{
		job("greenhouse:acme", "1", "ML Engineer"),
		job("lever:other", "1", "Completely Different Role"),
	}

	res := Merge(prior, nil, batch, now)

	if len(res.Corpus) != 2 {
		t.Fatalf("corpus size = %d, want 2 (same raw id, different sources)", len(res.Corpus))
	}
	byKey := map[model.Key]model.Job{}
	for _, j := range res.Corpus {
		byKey[j.Key()] = j
	}
	if !byKey[model.Key{Source: "greenhouse:acme", ID: "1"}].DiscoveredAt.Equal(t0) {
		t.Error("existing composite key lost its prior DiscoveredAt")
	}
	if !byKey[model.Key{Source: "lever:other", ID: "1"}].DiscoveredAt.Equal(now) {
		t.Error("new composite key did not get the run time")
	}
}

func TestMerge_ArchivesStaleKeys(t *testing.T) {
	prior := []model.Job{jobAt("greenhouse:acme", "1", "Gone Role", t0)}

	res := Merge(prior, nil, nil, now)

	if len(res.Corpus) != 0 {
		t.Fatalf("corpus size = %d, want 0", len(res.Corpus))
	}
	if len(res.Archive) != 1 {
		t.Fatalf("archive size = %d, want 1", len(res.Archive))
	}
	got := res.Archive[0]
	if got.Key() != (model.Key{Source: "greenhouse:acme", ID: "1"}) {
		t.Errorf("archived key = %v", got.Key())
	}
	if !got.ArchivedAt.Equal(now) {
		t.Errorf("ArchivedAt = %v, want %v", got.ArchivedAt, now)
	}
	if !got.DiscoveredAt.Equal(t0) {
		t.Errorf("archived record lost DiscoveredAt: %v", got.DiscoveredAt)
	}
}

func TestMerge_ArchivalIdempotent(t *testing.T) {
	prior := []model.Job{jobAt("greenhouse:acme", "1", "Gone Role", t0)}

	first := Merge(prior, nil, nil, now)
	// Same stale key again, already-archived: must not duplicate.
	second := Merge(prior, first.Archive, nil, now.Add(time.Hour))

	if len(second.Archive) != 1 {
		t.Fatalf("archive size after re-disappearance = %d, want 1", len(second.Archive))
	}
	if second.Archived != 0 {
		t.Errorf("Archived count = %d, want 0 on repeat", second.Archived)
	}
}

func TestMerge_WithinBatchDuplicateLastWriteWins(t *testing.T) {
	batch := []model.Job{
		job("amazon", "42", "First Sighting"),
		job("amazon", "42", "Second Sighting"),
	}

	res := Merge(nil, nil, batch, now)

	if len(res.Corpus) != 1 {
		t.Fatalf("corpus size = %d, want 1", len(res.Corpus))
	}
	if res.Corpus[0].Title != "Second Sighting" {
		t.Errorf("Title = %q, want last write to win", res.Corpus[0].Title)
	}
}

func TestMerge_DeterministicOrdering(t *testing.T) {
	prior := []model.Job{
		jobAt("amazon", "b", "Old B", t0),
		jobAt("amazon", "a", "Old A", t0),
	}
	batch := []model.Job{
		job("amazon", "b", "Old B"),
		job("amazon", "a", "Old A"),
		job("amazon", "c", "Brand New"),
	}

	res := Merge(prior, nil, batch, now)

	if len(res.Corpus) != 3 {
		t.Fatalf("corpus size = %d, want 3", len(res.Corpus))
	}
	// Newest discovery first; equal timestamps ordered by composite key.
	if res.Corpus[0].ID != "c" {
		t.Errorf("corpus[0].ID = %q, want the new key first", res.Corpus[0].ID)
	}
	if res.Corpus[1].ID != "a" || res.Corpus[2].ID != "b" {
		t.Errorf("tie order = [%s %s], want [a b]", res.Corpus[1].ID, res.Corpus[2].ID)
	}
}

func TestMerge_EmptyBatchArchivesEverything(t *testing.T) {
	prior := []model.Job{jobAt("A", "1", "Role", t0)}

	res := Merge(prior, nil, []model.Job{}, now)

	if len(res.Corpus) != 0 || len(res.Archive) != 1 || res.Archived != 1 {
		t.Errorf("result = corpus %d, archive %d, archived %d; want 0/1/1",
			len(res.Corpus), len(res.Archive), res.Archived)
	}
}
