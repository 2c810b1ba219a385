package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitvars/packages/builtin"
	"github.com/abdul-hamid-achik/hitvars/packages/core/env"
	"github.com/abdul-hamid-achik/hitvars/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file|-]...",
	Short: "Substitute placeholders and print the result",
	Long: `Substitute every {{...}} placeholder in the given files (or stdin) and
print the resolved text. Unresolvable placeholders are reported with their
line and column and nothing is printed for that file.

Examples:
  hitvars resolve api.http
  hitvars resolve api.http --env staging
  cat body.json | hitvars resolve --var id=42
  hitvars resolve api.http --watch`,
	RunE: resolveCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var watchFlag bool

func init() {
	resolveCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files and .env for changes and resolve again")
}

func resolveCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{stdinName}
	}

	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var failure error
	for _, file := range args {
		err := ws.resolveFile(ctx, file)
		if err == nil {
			continue
		}
		if err != errResolveFailed {
			ws.formatter.FormatError(err)
		}
		if failure == nil || failure == errResolveFailed {
			failure = err
		}
	}
	if err := ws.flush(); err != nil {
		return err
	}

	if !watchFlag {
		return failure
	}

	if slices.Contains(args, stdinName) {
		return withExitCode(ExitUsageError, fmt.Errorf("--watch cannot be used with stdin"))
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ws.watch(ctx, cmd, args)
}

// resolveFile substitutes one document and reports the outcome.
func (w *workspace) resolveFile(ctx context.Context, path string) error {
	text, err := w.readDocument(path)
	if err != nil {
		return err
	}
	scopes, err := w.scopes(ctx, documentDir(path), text)
	if err != nil {
		return err
	}

	if failures := w.resolver.Validate(text, scopes); len(failures) > 0 {
		w.formatter.FormatDiagnostics(output.Diagnose(path, text, failures))
		return errResolveFailed
	}

	resolved, err := w.resolver.Substitute(text, scopes)
	if err != nil {
		return err
	}
	w.formatter.FormatText(path, resolved)
	return nil
}

// watch re-resolves files when they, an environments file next to them or
// the .env in use change.
func (w *workspace) watch(ctx context.Context, cmd *cobra.Command, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				w.formatter.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
			}
			watchedDirs[dir] = true
		}
	}

	rerun := make(chan string, 1)
	trigger := func(name string) {
		select {
		case rerun <- name:
		default:
		}
	}

	go func() {
		if err := builtin.WatchDotenv(ctx, w.funcs.Dotenv(), w.formatter.FormatWarning, trigger); err != nil {
			w.formatter.FormatWarning("dotenv watch disabled: %v", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce timer for rapid file changes
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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			if !watched[abs] && !isEnvironmentsFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() { trigger(event.Name) })

		case name := <-rerun:
			fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\nResolving again...\n\n", name)
			for _, file := range files {
				if err := w.resolveFile(ctx, file); err != nil && err != errResolveFailed {
					w.formatter.FormatError(err)
				}
			}
			_ = w.flush()
			fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

func isEnvironmentsFile(path string) bool {
	return slices.Contains(env.EnvironmentFilenames, filepath.Base(path))
}
