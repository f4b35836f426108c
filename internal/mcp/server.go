package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/codectx/fastcontext/internal/agent"
	"github.com/codectx/fastcontext/internal/engine"
)

const (
	// ServerName is the MCP server name
	ServerName = "fastcontext"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the engine and agent it exposes
type Server struct {
	mcp    *server.MCPServer
	engine *engine.FastContext
	agent  *agent.Agent
}

// NewServer creates an MCP server for one workspace root
func NewServer(workspace string) (*Server, error) {
	fc, err := engine.New(workspace, engine.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	s := &Server{
		mcp:    server.NewMCPServer(ServerName, ServerVersion),
		engine: fc,
		agent:  agent.New(fc, nil, agent.DefaultMaxTurns),
	}
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.engine.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchContextTool(), s.handleSearchContext)
	s.mcp.AddTool(grepSearchTool(), s.handleGrepSearch)
	s.mcp.AddTool(globSearchTool(), s.handleGlobSearch)
	s.mcp.AddTool(readFileTool(), s.handleReadFile)
	s.mcp.AddTool(listDirectoryTool(), s.handleListDirectory)
	s.mcp.AddTool(indexWorkspaceTool(), s.handleIndexWorkspace)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
