package notifier

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"jobharvest/internal/model"
)

func TestLogNotifier_Notify_zeroJobs(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.Job{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for zero jobs, got %q", buf.String())
	}
}

func TestLogNotifier_Notify_logsEachJob(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	jobs := []model.Job{
		{Company: "Acme", Title: "ML Engineer", Location: "Berlin", URL: "https://example.com/1", Source: "greenhouse:acme"},
		{Company: "Amazon", Title: "Data Scientist", Location: "Munich", URL: "https://example.com/2", Source: "amazon"},
	}
	if err := n.Notify(jobs); err != nil {
		t.Errorf("Notify(jobs) = %v, want nil", err)
	}
	out := buf.String()
	if strings.Count(out, "new job") != 2 {
		t.Errorf("expected 2 log lines, got: %q", out)
	}
	if !strings.Contains(out, "greenhouse:acme") {
		t.Errorf("expected source in output, got: %q", out)
	}
}
