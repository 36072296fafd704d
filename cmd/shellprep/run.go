package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/shellprep/config"
	"github.com/c360studio/shellprep/pipeline"
	"github.com/c360studio/shellprep/watch"
)

// buildFlags are the per-run overrides layered on top of the loaded config.
type buildFlags struct {
	src        string
	dest       string
	template   string
	pattern    string
	source     string
	connectSrc []string
	defaultSrc []string
	frameSrc   []string
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.src, "src", "", "Built-assets directory to read")
	cmd.Flags().StringVar(&f.dest, "dest", "", "Output directory (default: in place)")
	cmd.Flags().StringVar(&f.template, "template", "", "Injection template path")
	cmd.Flags().StringVar(&f.pattern, "pattern", "", "Glob pattern selecting documents to transform")
	cmd.Flags().StringVar(&f.source, "source", "", "Entry document or dev server origin for connect-src")
	cmd.Flags().StringSliceVar(&f.connectSrc, "connect-src", nil, "Extra connect-src origins")
	cmd.Flags().StringSliceVar(&f.defaultSrc, "default-src", nil, "Extra default-src origins")
	cmd.Flags().StringSliceVar(&f.frameSrc, "frame-src", nil, "Extra frame-src/child-src origins")
}

// overlay returns the flags as a config layer for Merge.
func (f *buildFlags) overlay() *config.Config {
	return &config.Config{
		Build: config.BuildConfig{
			Src:      f.src,
			Dest:     f.dest,
			Template: f.template,
			Pattern:  f.pattern,
		},
		CSP: config.CSPConfig{
			Source:     f.source,
			ConnectSrc: f.connectSrc,
			DefaultSrc: f.defaultSrc,
			FrameSrc:   f.frameSrc,
		},
	}
}

func loadConfig(configPath string, flags *buildFlags) (*config.Config, error) {
	cfg, err := config.NewLoader(slog.Default()).Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.Merge(flags.overlay())
	return cfg, nil
}

func runCmd(configPath *string) *cobra.Command {
	flags := &buildFlags{}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one preparation pass over the built assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, flags)
			if err != nil {
				return err
			}

			p, err := pipeline.New(cfg, pipeline.Options{
				Logger: slog.Default(),
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}
			return p.Run()
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report sizes without writing output")

	return cmd
}

func watchCmd(configPath *string) *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the preparation pass whenever assets or the template change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath, flags)
			if err != nil {
				return err
			}

			// Writing back into the watched tree would re-trigger the
			// watcher and splice fragments into already-prepared output.
			if err := watchDestValid(cfg.Build.Src, cfg.Build.Dest); err != nil {
				return err
			}

			// The template is re-extracted on every rebuild, so template
			// edits take effect without restarting the watch.
			rebuild := func() error {
				p, err := pipeline.New(cfg, pipeline.Options{Logger: slog.Default()})
				if err != nil {
					return err
				}
				return p.Run()
			}

			// Fail fast on authoring mistakes before entering the loop.
			if err := rebuild(); err != nil {
				return err
			}

			w, err := watch.New(cfg.Watch.GetDebounceDelay(), rebuild, slog.Default())
			if err != nil {
				return err
			}
			defer w.Close()

			if err := w.Add(cfg.Build.Src); err != nil {
				return err
			}
			if err := w.AddFile(cfg.Build.Template); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

// watchDestValid rejects destinations that land inside the watched source
// tree.
func watchDestValid(src, dest string) error {
	if dest == "" {
		return fmt.Errorf("watch requires --dest outside the source directory")
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(absSrc, absDest)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("watch destination %s must be outside the source directory %s", dest, src)
	}
	return nil
}
