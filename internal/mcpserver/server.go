// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the filesystem commands as tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/command"
)

const contractURI = "ansuz://commands"

// Server wraps the MCP server with one tool per registered command.
type Server struct {
	mcp      *server.MCPServer
	reg      *command.Registry
	handlers map[string]server.ToolHandlerFunc
}

// New creates a new MCP server exposing every command in reg.
func New(reg *command.Registry, version string) *Server {
	s := &Server{reg: reg, handlers: make(map[string]server.ToolHandlerFunc)}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	for _, c := range reg.Commands() {
		opts := []mcp.ToolOption{mcp.WithDescription(c.Description)}
		for _, p := range c.Params {
			opts = append(opts, mcp.WithString(p.Name, mcp.Required(), mcp.Description(p.Description)))
		}
		h := s.toolHandler(c.Name)
		s.handlers[c.Name] = h
		s.mcp.AddTool(mcp.NewTool(c.Name, opts...), h)
	}

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Filesystem Command Contract",
			mcp.WithResourceDescription("Semantics of the filesystem commands exposed as tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio serves MCP over the given streams until ctx is cancelled or
// the input is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := s.reg.Invoke(ctx, name, raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		switch v := result.(type) {
		case nil:
			return mcp.NewToolResultText("ok"), nil
		case string:
			return mcp.NewToolResultText(v), nil
		default:
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(string(out)), nil
		}
	}
}

func (s *Server) readContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     Contract(s.reg.Commands()),
		},
	}, nil
}
