package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdsync/pkg/pipeline"
)

// moveOpts holds the flags shared by move and pin.
type moveOpts struct {
	write bool // rewrite the file in place instead of printing it
}

func (c *CLI) moveCommand() *cobra.Command {
	var opts moveOpts

	cmd := &cobra.Command{
		Use:   "move FILE NODE X Y",
		Short: "Write a node position into the line that declares it",
		Long: `Move a node by rewriting the coordinate suffix of the line that declared it.
Only that line changes; coordinates are rounded to integers. The result is
printed to stdout unless --write is given. Put flags first and separate
negative coordinates with --.`,
		Example: `  erdsync move -w company.erd EMPLOYEE 120 40
  erdsync move -w company.erd EMPLOYEE -- -120 -40`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid x %q: %w", args[2], err)
			}
			y, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid y %q: %w", args[3], err)
			}
			return c.runMove(cmd.Context(), args[0], args[1], x, y, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite FILE in place")
	return cmd
}

func (c *CLI) runMove(ctx context.Context, path, id string, x, y float64, opts moveOpts) error {
	text, err := readDocument(path)
	if err != nil {
		return err
	}
	dopts, err := c.parseOptions()
	if err != nil {
		return err
	}
	out, err := pipeline.Move(ctx, text, id, x, y, dopts)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("moved node", "id", id, "x", x, "y", y)
	return c.emitDocument(path, out, opts, fmt.Sprintf("Moved %s", id))
}

func (c *CLI) pinCommand() *cobra.Command {
	var opts moveOpts

	cmd := &cobra.Command{
		Use:   "pin FILE",
		Short: "Write the spiral position of every unplaced node into the text",
		Long: `Pin freezes the current layout: every node declared without coordinates
gets its computed position appended, so inserting nodes later no longer
shifts it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPin(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite FILE in place")
	return cmd
}

func (c *CLI) runPin(ctx context.Context, path string, opts moveOpts) error {
	text, err := readDocument(path)
	if err != nil {
		return err
	}
	dopts, err := c.parseOptions()
	if err != nil {
		return err
	}
	out, n := pipeline.Pin(text, dopts)
	loggerFromContext(ctx).Debug("pinned nodes", "count", n)
	if n == 0 && opts.write {
		printInfo("Nothing to pin")
		return nil
	}
	return c.emitDocument(path, out, opts, fmt.Sprintf("Pinned %d nodes", n))
}

// emitDocument writes text back to path or prints it to stdout.
func (c *CLI) emitDocument(path, text string, opts moveOpts, msg string) error {
	if !opts.write || path == "-" {
		_, err := fmt.Fprint(c.stdout, text)
		return err
	}
	if err := writeDocument(path, text); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("%s", msg)
	printFile(path)
	return nil
}
