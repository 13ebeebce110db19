package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/erdsync/pkg/editor"
)

func (c *CLI) watchCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-render a diagram every time the file changes",
		Long: `Watch renders FILE once, then again after every change. Bursts of writes
(editors that save through a temp file, formatters) are coalesced by the
editor debounce delay from the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, dot, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with id and source line")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	if opts.output == "-" {
		return fmt.Errorf("watch cannot write to stdout")
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}

	rerender := func() {
		if err := c.runRender(ctx, path, opts); err != nil && ctx.Err() == nil {
			printError("%v", err)
		}
	}
	rerender()

	printInfo("Watching %s", path)
	printDetail("Press Ctrl+C to stop")
	err = watchFile(ctx, path, cfg.Debounce(), logger, rerender)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// watchFile calls onChange, debounced by delay, whenever path is written,
// created or replaced. It watches the parent directory so editors that save
// by renaming a temp file over path are still seen. It returns when ctx
// ends.
func watchFile(ctx context.Context, path string, delay time.Duration, logger *log.Logger, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	d := editor.NewDebouncer(delay, onChange)
	defer d.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			d.Trigger()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
