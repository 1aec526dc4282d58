package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/sitesmith/internal/events"
	"github.com/fyrsmithlabs/sitesmith/internal/intake"
	"github.com/fyrsmithlabs/sitesmith/internal/pipeline"
)

const watchDebounce = 250 * time.Millisecond

type generateOptions struct {
	intakePath string
	deploy     string
	watch      bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a site from an intake file",
		Long: `Generate a site from an intake file (.json, .yaml or .toml) and print
progress as it runs.

Examples:
  # Generate into pipeline.output_dir
  sitesmith generate --intake business.yaml

  # Generate and publish with the configured provider
  sitesmith generate --intake business.yaml --deploy default

  # Regenerate every time the intake file changes
  sitesmith generate --intake business.toml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, root, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.intakePath, "intake", "", "intake file (.json, .yaml, .yml or .toml)")
	cmd.Flags().StringVar(&opts.deploy, "deploy", "", `deployment provider ("default" uses deploy.provider)`)
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "regenerate when the intake file changes")
	_ = cmd.MarkFlagRequired("intake")
	return cmd
}

func runGenerate(ctx context.Context, root *rootOptions, opts *generateOptions, out, logOut io.Writer) error {
	a, err := newApp(ctx, root, logOut)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	err = generateOnce(ctx, a, opts, out)
	if !opts.watch {
		return err
	}
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("✗ "+err.Error()))
	}
	return watchIntake(ctx, a, opts, out)
}

func generateOnce(ctx context.Context, a *app, opts *generateOptions, out io.Writer) error {
	form, err := intake.LoadFile(opts.intakePath)
	if err != nil {
		return err
	}
	cfg, err := intake.Normalize(form)
	if err != nil {
		return err
	}

	var sink events.Sink = newProgressView(out)
	if a.publisher != nil {
		sink = events.MultiSink{sink, a.publisher}
	}
	res, err := a.pipeline.Run(ctx, pipeline.Request{
		Config: cfg,
		Deploy: a.deployRequest(opts.deploy),
	}, sink)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("generation %s finished with %d error(s)", res.GenerationID, len(res.Errors))
	}
	return nil
}

// watchIntake regenerates on every change to the intake file until ctx is
// done. The parent directory is watched so editors that replace the file
// on save are still seen.
func watchIntake(ctx context.Context, a *app, opts *generateOptions, out io.Writer) error {
	path, err := filepath.Abs(opts.intakePath)
	if err != nil {
		return fmt.Errorf("resolve intake path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create intake watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	fmt.Fprintln(out, dimStyle.Render("watching "+opts.intakePath+" for changes (ctrl+c to stop)"))

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			if err := generateOnce(ctx, a, opts, out); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Warn(ctx, "regeneration failed", zap.Error(err))
				fmt.Fprintln(out, errorStyle.Render("✗ "+err.Error()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn(ctx, "intake watcher error", zap.Error(err))
		}
	}
}
