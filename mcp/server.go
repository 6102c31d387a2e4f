package mcp

import (
	"github.com/ka2n/csvboard/api"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server for csvboard
type Server struct {
	server *server.MCPServer
}

// NewServer creates a new MCP server instance serving board
func NewServer(board *api.Board) *Server {
	s := server.NewMCPServer("csvboard", api.Version)

	s.AddTools(InitTools(board)...)

	return &Server{
		server: s,
	}
}

// Run starts the MCP server on stdin/stdout
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
