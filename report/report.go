// Package report emits build diagnostics for labeled pipeline stages.
package report

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360studio/shellprep/stream"
)

// Stat is the aggregate size of one labeled stage.
type Stat struct {
	Label string
	Files int
	Bytes int
}

// Sizer reports the aggregate byte size of a labeled document stream. It is
// purely observational and never mutates documents. Each Sizer carries a run
// ID so the two reports of one build invocation correlate in the logs.
type Sizer struct {
	runID  string
	logger *slog.Logger
}

// NewSizer creates a size reporter for one build run.
func NewSizer(logger *slog.Logger) *Sizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sizer{
		runID:  uuid.NewString(),
		logger: logger,
	}
}

// RunID returns the identifier correlating this run's reports.
func (s *Sizer) RunID() string {
	return s.runID
}

// Observe logs the aggregate size of a labeled stage and returns the stat.
func (s *Sizer) Observe(label string, docs []stream.Document) Stat {
	stat := Stat{Label: label, Files: len(docs)}
	for _, doc := range docs {
		stat.Bytes += len(doc.Contents)
	}

	s.logger.Info("stage size",
		slog.String("run_id", s.runID),
		slog.String("stage", stat.Label),
		slog.Int("files", stat.Files),
		slog.Int("bytes", stat.Bytes))

	return stat
}
