package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounce interval for filesystem events; editors fire bursts of writes.
const watchDebounce = 300 * time.Millisecond

var watchFlag bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate and resolve the wiring without generating code",
	Long: `check loads the wiring declarations, validates them, resolves every
(context, capability) pair, and reports all diagnostics. The exit code is
non-zero when any pair fails to resolve.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&watchFlag, "watch", false,
		"re-run the check whenever a wiring file changes")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	res, err := checkOnce()
	if err != nil {
		return err
	}

	if !watchFlag {
		if res != nil && res.failed() {
			return fmt.Errorf("wiring check failed")
		}

		return nil
	}

	return watchLoop(res)
}

func checkOnce() (*buildResult, error) {
	res, err := runPipeline()
	if err != nil {
		return nil, err
	}

	printDiagnostics(res.diags)
	printSummary(res)

	return res, nil
}

// watchLoop re-runs the check whenever a directory holding a wiring file
// changes. Directories are watched rather than files because editors often
// replace files on save, which drops file-level watches.
func watchLoop(last *buildResult) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	dirs := map[string]bool{}

	for _, path := range last.paths {
		dirs[filepath.Dir(path)] = true
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	fmt.Println(subtleStyle.Render("watching for changes..."))

	var timer *time.Timer

	rerun := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			fmt.Println(subtleStyle.Render("--- change detected ---"))

			if _, err := checkOnce(); err != nil {
				printError(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			printError(err)
		}
	}
}
