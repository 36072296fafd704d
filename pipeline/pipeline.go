// Package pipeline orchestrates one preparation run over a document stream.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/c360studio/shellprep/config"
	"github.com/c360studio/shellprep/inject"
	"github.com/c360studio/shellprep/report"
	"github.com/c360studio/shellprep/stream"
)

// Options carries run-scoped knobs that are not part of the persisted config.
type Options struct {
	// Logger receives diagnostics; nil falls back to slog.Default().
	Logger *slog.Logger

	// DryRun reports sizes without writing any output.
	DryRun bool
}

// Pipeline is one fully constructed preparation run. All fallible,
// input-independent setup (template extraction, CSP composition, filter
// compilation) happens in New; a construction error means no document is
// ever touched.
type Pipeline struct {
	cfg      *config.Config
	injector *inject.Injector
	filter   *stream.Filter
	sizer    *report.Sizer
	logger   *slog.Logger
	dryRun   bool
}

// New wires the extractor, composer, filter and reporter for one run.
func New(cfg *config.Config, opts Options) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	injector, err := inject.New(inject.Config{
		TemplatePath: cfg.Build.Template,
		Source:       cfg.CSP.Source,
		ConnectSrc:   cfg.CSP.ConnectSrc,
		DefaultSrc:   cfg.CSP.DefaultSrc,
		FrameSrc:     cfg.CSP.FrameSrc,
	})
	if err != nil {
		return nil, err
	}

	filter, err := stream.NewFilter(cfg.Build.Pattern)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		injector: injector,
		filter:   filter,
		sizer:    report.NewSizer(logger),
		logger:   logger,
		dryRun:   opts.DryRun,
	}, nil
}

// Apply transforms an in-memory document stream. Matching documents receive
// the injection steps; everything else passes through byte-identical. Output
// order matches input order.
func (p *Pipeline) Apply(docs []stream.Document) []stream.Document {
	part := p.filter.Split(docs)

	for i := range part.Matched {
		part.Matched[i].Contents = []byte(p.injector.Apply(string(part.Matched[i].Contents)))
	}
	p.sizer.Observe("inject", part.Matched)

	out := part.Restore()
	p.sizer.Observe("pipeline", out)

	return out
}

// Run loads documents from the configured source directory, applies the
// transform, and stores the results at the destination (in place when no
// destination is configured).
func (p *Pipeline) Run() error {
	docs, err := stream.Load(p.cfg.Build.Src)
	if err != nil {
		return err
	}

	out := p.Apply(docs)

	if p.dryRun {
		p.logger.Info("dry run, skipping write",
			slog.String("run_id", p.sizer.RunID()),
			slog.Int("files", len(out)))
		return nil
	}

	dest := p.cfg.Build.Dest
	if dest == "" {
		dest = p.cfg.Build.Src
	}
	if err := stream.Store(dest, out); err != nil {
		return err
	}

	p.logger.Info("preparation complete",
		slog.String("run_id", p.sizer.RunID()),
		slog.String("dest", dest),
		slog.Int("files", len(out)))
	return nil
}
