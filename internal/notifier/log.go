package notifier

import (
	"log/slog"

	"jobharvest/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured
// messages. It stands in for whatever distribution collaborator (mailer,
// webhook, site generator) consumes the new-jobs list downstream.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with company, title, location, and URL.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		n.logger.Info("new job",
			"company", j.Company,
			"title", j.Title,
			"location", j.Location,
			"url", j.URL,
			"source", j.Source,
		)
	}
	return nil
}
