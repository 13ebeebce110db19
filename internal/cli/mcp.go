package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/erdsync/internal/mcp"
	"github.com/matzehuels/erdsync/pkg/buildinfo"
	"github.com/matzehuels/erdsync/pkg/dsl"
)

func (c *CLI) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP tool server on stdin/stdout",
		Long: `Mcp serves parse_diagram, move_node, pin_positions and render_dot as Model
Context Protocol tools over stdio.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			s := mcp.NewServer(buildinfo.Version, mcp.Options{
				Parse:  dsl.Options{Layout: cfg.LayoutConfig()},
				Logger: loggerFromContext(cmd.Context()),
			})
			return mcp.ServeStdio(s)
		},
	}
}
