package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/eslintcfg/pkg/core"
	"github.com/spf13/cobra"
)

// watchDebounce collapses bursts of file events (editors write several times).
const watchDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [document]",
		Short: "Re-print the composed configuration when local files change",
		Long: `Compose a document, print it, and print it again whenever one of the
local document files it was composed from changes. Bundled presets never
change and are not watched.`,
		Example: `  eslintcfg watch ./.eslintrc.yaml
  eslintcfg watch ./.eslintrc.yaml -q '.rules | length'`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: CompleteDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			query, _ := cmd.Flags().GetString("query")
			return runWatch(ctx, cc, argOrEmpty(args), query)
		},
	}
	cmd.Flags().String("format", "json", "Document format (json|yaml)")
	cmd.Flags().StringP("query", "q", "", "jq filter applied to the configuration")
	return cmd
}

// runWatch prints ref and re-prints it on every change until ctx is done.
// Composition errors are logged and the previous output stays valid.
func runWatch(ctx context.Context, cc *CommandContext, ref, query string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	watched := make(map[string]bool)
	render := func() error {
		ec, err := cc.Resolve(ref)
		if err != nil {
			return err
		}
		if err := printConfig(ctx, cc, ec, query); err != nil {
			return err
		}
		// Watch directories: editors replace files, which drops file watches.
		for _, file := range watchedFiles(ec) {
			watched[file] = true
			dir := filepath.Dir(file)
			if err := watcher.Add(dir); err != nil {
				cc.Logger.Warn("failed to watch directory", slog.String("dir", dir), slog.Any("error", err))
			}
		}
		return nil
	}

	if err := render(); err != nil {
		return err
	}
	if len(watched) == 0 {
		cc.Renderer.Warning("no local document files to watch")
		return nil
	}

	changed := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			cc.Logger.Debug("document changed", slog.String("path", event.Name))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(watchDebounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			if err := render(); err != nil {
				cc.Logger.Error("composition failed", slog.Any("error", err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Error("watcher error", slog.Any("error", err))
		}
	}
}

// watchedFiles returns the local files ec was composed from.
func watchedFiles(ec *core.EffectiveConfig) []string {
	var files []string
	seen := make(map[string]bool)
	for _, src := range ec.Sources {
		if !filepath.IsAbs(src) || seen[src] {
			continue
		}
		seen[src] = true
		files = append(files, filepath.Clean(src))
	}
	return files
}

// printConfig writes ec in the configured format, or the results of query.
func printConfig(ctx context.Context, cc *CommandContext, ec *core.EffectiveConfig, query string) error {
	w := cc.Renderer.Writer()
	if query == "" {
		return encode(w, cc.Cfg.Format, &ec.Document)
	}
	results, err := runQuery(ctx, query, ec.ToMap())
	if err != nil {
		return err
	}
	for _, v := range results {
		if err := encode(w, cc.Cfg.Format, v); err != nil {
			return err
		}
	}
	return nil
}
