package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/erdsync/pkg/dsl"
	apperr "github.com/matzehuels/erdsync/pkg/errors"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	json    bool // emit the model as JSON instead of tables
	ignored bool // list lines that contributed nothing
	links   bool // include the link table
}

func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Print the nodes and links a diagram document produces",
		Long: `Parse a diagram document and print its nodes, links and, with --ignored,
the lines that contributed nothing. Nodes without coordinates show their
spiral position dimmed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the model as JSON")
	cmd.Flags().BoolVar(&opts.ignored, "ignored", false, "list ignored lines")
	cmd.Flags().BoolVar(&opts.links, "links", true, "list links")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, path string, opts parseOpts) error {
	logger := loggerFromContext(ctx)

	text, err := readDocument(path)
	if err != nil {
		return err
	}
	dopts, err := c.parseOptions()
	if err != nil {
		return err
	}
	res := dsl.ParseString(text, dopts)
	logger.Debug("parsed", "path", path, "nodes", len(res.Model.Nodes), "ignored", len(res.Ignored))

	if opts.json {
		out := struct {
			Nodes   any               `json:"nodes"`
			Links   any               `json:"links"`
			Ignored []dsl.IgnoredLine `json:"ignored,omitempty"`
		}{res.Model.Nodes, res.Model.Links, nil}
		if opts.ignored {
			out.Ignored = res.Ignored
		}
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintln(c.stdout, nodeTable(res.Model))
	if opts.links && len(res.Model.Links) > 0 {
		fmt.Fprintln(c.stdout, linkTable(res.Model))
	}
	if opts.ignored && len(res.Ignored) > 0 {
		fmt.Fprintln(c.stdout, ignoredTable(res.Ignored))
	}
	printStats(res.Model.Stats(), len(res.Ignored), false)
	if !opts.ignored && len(res.Ignored) > 0 {
		printNextStep("Show ignored lines", "erdsync parse --ignored "+path)
	}
	return nil
}

// parseOptions builds parser options from the config file.
func (c *CLI) parseOptions() (dsl.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return dsl.Options{}, err
	}
	return dsl.Options{Layout: cfg.LayoutConfig()}, nil
}

// =============================================================================
// Document I/O
// =============================================================================

// readDocument reads path, or stdin when path is "-".
func readDocument(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text := string(data)
	if err := apperr.ValidateDocument(text); err != nil {
		return "", err
	}
	return text, nil
}

// writeDocument replaces path with text via a temp file and rename so an
// editor watching the file never sees a partial write.
func writeDocument(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".erdsync-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
