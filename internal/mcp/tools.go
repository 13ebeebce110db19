// Package mcp exposes diagram parsing and position write-back as Model
// Context Protocol tools, so an assistant can read a diagram, move nodes and
// get the rewritten text back.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/matzehuels/erdsync/pkg/diagram"
	"github.com/matzehuels/erdsync/pkg/dsl"
	apperr "github.com/matzehuels/erdsync/pkg/errors"
	"github.com/matzehuels/erdsync/pkg/pipeline"
	"github.com/matzehuels/erdsync/pkg/render"
)

// Options configures the tool handlers.
type Options struct {
	Parse  dsl.Options
	Logger *log.Logger
}

// NewServer returns an MCP server with every erdsync tool registered.
func NewServer(version string, opts Options) *server.MCPServer {
	s := server.NewMCPServer(
		"erdsync",
		version,
		server.WithToolCapabilities(true),
	)
	RegisterTools(s, opts)
	return s
}

// ServeStdio runs s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// RegisterTools adds the diagram tools to s.
func RegisterTools(s *server.MCPServer, opts Options) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s.AddTool(parseTool(), parseHandler(opts))
	s.AddTool(moveTool(), moveHandler(opts))
	s.AddTool(pinTool(), pinHandler(opts))
	s.AddTool(renderDOTTool(), renderDOTHandler(opts))
}

// --- parse_diagram ---

func parseTool() mcp.Tool {
	return mcp.NewTool("parse_diagram",
		mcp.WithDescription("Parse ER diagram text into nodes and links. Returns the model as JSON plus any lines the parser skipped."),
		mcp.WithString("text",
			mcp.Description("Diagram source, one statement per line (ent, rel, att, link, spec, ...)"),
			mcp.Required(),
		),
	)
}

type parseOutput struct {
	Model   diagram.Model     `json:"model"`
	Stats   statsOutput       `json:"stats"`
	Ignored []dsl.IgnoredLine `json:"ignored"`
}

type statsOutput struct {
	Nodes    int `json:"nodes"`
	Links    int `json:"links"`
	Dangling int `json:"dangling"`
	Placed   int `json:"placed"`
}

func parseHandler(opts Options) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := requireText(req)
		if err != nil {
			return toolError(err)
		}

		res := dsl.ParseString(text, opts.Parse)
		st := res.Model.Stats()
		out := parseOutput{
			Model:   res.Model,
			Stats:   statsOutput{Nodes: st.Nodes, Links: st.Links, Dangling: st.Dangling, Placed: st.Placed},
			Ignored: res.Ignored,
		}
		if out.Ignored == nil {
			out.Ignored = []dsl.IgnoredLine{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return toolError(err)
		}
		opts.Logger.Debug("parse_diagram", "nodes", st.Nodes, "ignored", len(res.Ignored))
		return mcp.NewToolResultText(string(data)), nil
	}
}

// --- move_node ---

func moveTool() mcp.Tool {
	return mcp.NewTool("move_node",
		mcp.WithDescription("Move one node to (x, y). Only the line that declared the node changes; the full rewritten text is returned."),
		mcp.WithString("text",
			mcp.Description("Diagram source"),
			mcp.Required(),
		),
		mcp.WithString("node",
			mcp.Description("Node id as reported by parse_diagram (e.g. EMPLOYEE, Name_3, spec_5)"),
			mcp.Required(),
		),
		mcp.WithNumber("x",
			mcp.Description("New x coordinate; rounded to an integer"),
			mcp.Required(),
		),
		mcp.WithNumber("y",
			mcp.Description("New y coordinate; rounded to an integer"),
			mcp.Required(),
		),
	)
}

func moveHandler(opts Options) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := requireText(req)
		if err != nil {
			return toolError(err)
		}
		id, err := req.RequireString("node")
		if err != nil {
			return toolError(err)
		}
		x, err := req.RequireFloat("x")
		if err != nil {
			return toolError(err)
		}
		y, err := req.RequireFloat("y")
		if err != nil {
			return toolError(err)
		}

		out, err := pipeline.Move(ctx, text, id, x, y, opts.Parse)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(out), nil
	}
}

// --- pin_positions ---

func pinTool() mcp.Tool {
	return mcp.NewTool("pin_positions",
		mcp.WithDescription("Write the current position of every auto-placed node into the text so later edits do not move them."),
		mcp.WithString("text",
			mcp.Description("Diagram source"),
			mcp.Required(),
		),
	)
}

func pinHandler(opts Options) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := requireText(req)
		if err != nil {
			return toolError(err)
		}
		out, n := pipeline.Pin(text, opts.Parse)
		opts.Logger.Debug("pin_positions", "pinned", n)
		return mcp.NewToolResultText(out), nil
	}
}

// --- render_dot ---

func renderDOTTool() mcp.Tool {
	return mcp.NewTool("render_dot",
		mcp.WithDescription("Render the diagram as Graphviz DOT with every node pinned at its position."),
		mcp.WithString("text",
			mcp.Description("Diagram source"),
			mcp.Required(),
		),
		mcp.WithBoolean("detailed",
			mcp.Description("Label each node with its id and declaring line"),
		),
	)
}

func renderDOTHandler(opts Options) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := requireText(req)
		if err != nil {
			return toolError(err)
		}
		res := dsl.ParseString(text, opts.Parse)
		data, err := pipeline.Render(ctx, res.Model, render.FormatDOT, req.GetBool("detailed", false))
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// =============================================================================
// Helpers
// =============================================================================

func requireText(req mcp.CallToolRequest) (string, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return "", err
	}
	if err := apperr.ValidateDocument(text); err != nil {
		return "", err
	}
	return text, nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	msg := apperr.UserMessage(err)
	if code := apperr.GetCode(err); code != "" {
		msg = fmt.Sprintf("%s: %s", code, msg)
	}
	return mcp.NewToolResultError(msg), nil
}
