// Package pipeline drives one aggregation run: fetch every source, merge
// the batch against the prior corpus, persist the new state, and hand the
// new postings to the notifier.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"jobharvest/internal/merge"
	"jobharvest/internal/model"
	"jobharvest/internal/store"
	"jobharvest/internal/track"
)

// SourceReport records one adapter's outcome for the run summary.
type SourceReport struct {
	Source string
	Count  int
	Err    error
}

// Report summarizes a completed run.
type Report struct {
	Sources    []SourceReport
	Fetched    int // records across all successful sources
	Succeeded  int
	Failed     int
	New        int // composite keys never in the corpus before
	Carried    int
	Archived   int
	CorpusSize int
	NewJobs    []model.Job // postings notified this run
}

// Pipeline owns one run over the shared corpus, archive, and seen-set.
// It is strictly single-writer: the two runs must never share state files.
type Pipeline struct {
	sources    []model.Source
	corpus     store.Corpus
	archive    store.Archive
	tracker    *track.Tracker
	notifier   model.Notifier
	query      string
	maxResults int
	logger     *slog.Logger
	now        func() time.Time
}

// New wires a pipeline with all its dependencies.
func New(
	sources []model.Source,
	corpus store.Corpus,
	archive store.Archive,
	tracker *track.Tracker,
	notifier model.Notifier,
	query string,
	maxResults int,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		sources:    sources,
		corpus:     corpus,
		archive:    archive,
		tracker:    tracker,
		notifier:   notifier,
		query:      query,
		maxResults: maxResults,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes one full cycle: fetch → merge → persist → notify → mark seen.
//
// A source failing degrades to zero records for that source and never
// aborts the run; even an all-failed run completes, producing zero new
// jobs and leaving persisted state as it was. Persistence failures are
// fatal: the run returns an error and the previous on-disk state survives
// untouched.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{Sources: make([]SourceReport, len(p.sources))}

	// Fan out fetches; the Wait below is the join barrier — no merging
	// starts until every source has completed or definitively failed.
	var g errgroup.Group
	batches := make([][]model.Job, len(p.sources))
	for i, src := range p.sources {
		i, src := i, src
		g.Go(func() error {
			jobs, err := src.Fetch(ctx, p.query, p.maxResults)
			if err != nil {
				p.logger.Error("source fetch failed", "source", src.Identity(), "error", err)
				report.Sources[i] = SourceReport{Source: src.Identity(), Err: err}
				return nil // best-effort: never cancel siblings
			}
			p.logger.Info("source fetched", "source", src.Identity(), "jobs", len(jobs))
			batches[i] = jobs
			report.Sources[i] = SourceReport{Source: src.Identity(), Count: len(jobs)}
			return nil
		})
	}
	g.Wait()

	// Concatenate in configured source order so within-batch duplicate
	// resolution (last-write-wins) stays deterministic.
	var batch []model.Job
	for i := range batches {
		batch = append(batch, batches[i]...)
		if report.Sources[i].Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
			report.Fetched += report.Sources[i].Count
		}
	}

	// When every source failed, the empty batch carries no signal: merging
	// it would archive the entire corpus. Complete the run with state
	// untouched instead.
	if report.Failed > 0 && report.Succeeded == 0 {
		p.logger.Error("all sources failed, leaving state untouched", "sources", report.Failed)
		return report, nil
	}

	prior, err := p.corpus.Load()
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	archived, err := p.archive.Load()
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}

	res := merge.Merge(prior, archived, batch, p.now())
	report.New = res.New
	report.Carried = res.Carried
	report.Archived = res.Archived
	report.CorpusSize = len(res.Corpus)

	if err := p.corpus.Save(res.Corpus); err != nil {
		return nil, fmt.Errorf("save corpus: %w", err)
	}
	if err := p.archive.Save(res.Archive); err != nil {
		return nil, fmt.Errorf("save archive: %w", err)
	}

	report.NewJobs = p.tracker.ComputeNew(res.Corpus)
	if len(report.NewJobs) > 0 {
		if err := p.notifier.Notify(report.NewJobs); err != nil {
			// The send was attempted; the keys are marked seen below so a
			// flaky notifier cannot cause duplicate notifications later.
			p.logger.Error("notify failed", "jobs", len(report.NewJobs), "error", err)
		}
		if err := p.tracker.MarkSeen(report.NewJobs); err != nil {
			return nil, fmt.Errorf("mark seen: %w", err)
		}
	}

	p.logger.Info("run complete",
		"sources_ok", report.Succeeded,
		"sources_failed", report.Failed,
		"fetched", report.Fetched,
		"corpus", report.CorpusSize,
		"new", len(report.NewJobs),
		"archived", report.Archived,
	)

	return report, nil
}
