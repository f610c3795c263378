// Package merge reconciles a fresh scrape batch against the prior corpus:
// it carries first-discovery timestamps forward, stamps new keys with the
// run time, and archives postings that disappeared from source listings.
package merge

import (
	"sort"
	"time"

	"jobharvest/internal/model"
)

// Result is the outcome of merging one run's batch into the corpus.
type Result struct {
	Corpus  []model.Job         // full replacement corpus, discovered_at desc
	Archive []model.ArchivedJob // full archive including prior entries, archived_at desc

	New      int // composite keys absent from the prior corpus
	Carried  int // keys present in both prior corpus and batch
	Archived int // keys newly archived this run
}

// Merge combines the fresh batch with the prior corpus and archive.
//
// Identity is the composite (source, id) key throughout. Duplicate keys
// within the batch resolve last-write-wins. A key present in the prior
// corpus keeps its original DiscoveredAt; new keys get now. Keys that
// vanished from the batch are appended to the archive at most once, then
// dropped from the corpus. Output ordering is deterministic: DiscoveredAt
// (or ArchivedAt) descending, composite key ascending on ties.
func Merge(prior []model.Job, archive []model.ArchivedJob, batch []model.Job, now time.Time) Result {
	priorByKey := make(map[model.Key]model.Job, len(prior))
	for _, j := range prior {
		priorByKey[j.Key()] = j
	}

	archivedKeys := make(map[model.Key]struct{}, len(archive))
	for _, a := range archive {
		archivedKeys[a.Key()] = struct{}{}
	}

	// Last-write-wins for duplicate keys surfacing within one batch.
	merged := make(map[model.Key]model.Job, len(batch))
	for _, j := range batch {
		key := j.Key()
		if prev, ok := priorByKey[key]; ok {
			j.DiscoveredAt = prev.DiscoveredAt
		} else {
			j.DiscoveredAt = now
		}
		merged[key] = j
	}

	res := Result{Archive: archive}
	for key, j := range merged {
		if _, ok := priorByKey[key]; ok {
			res.Carried++
		} else {
			res.New++
		}
		res.Corpus = append(res.Corpus, j)
	}

	// Archive prior postings that vanished from the batch, idempotently.
	for _, j := range prior {
		key := j.Key()
		if _, live := merged[key]; live {
			continue
		}
		if _, done := archivedKeys[key]; done {
			continue
		}
		archivedKeys[key] = struct{}{}
		res.Archive = append(res.Archive, model.ArchivedJob{Job: j, ArchivedAt: now})
		res.Archived++
	}

	sort.Slice(res.Corpus, func(i, k int) bool {
		a, b := res.Corpus[i], res.Corpus[k]
		if !a.DiscoveredAt.Equal(b.DiscoveredAt) {
			return a.DiscoveredAt.After(b.DiscoveredAt)
		}
		return a.Key().String() < b.Key().String()
	})
	sort.Slice(res.Archive, func(i, k int) bool {
		a, b := res.Archive[i], res.Archive[k]
		if !a.ArchivedAt.Equal(b.ArchivedAt) {
			return a.ArchivedAt.After(b.ArchivedAt)
		}
		return a.Key().String() < b.Key().String()
	})

	return res
}
