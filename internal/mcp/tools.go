package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codectx/fastcontext/internal/engine"
	"github.com/codectx/fastcontext/internal/store"
	"github.com/codectx/fastcontext/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32001 // Query parameter is empty
	ErrorCodeToolFailed    = -32002 // Tool execution failed
)

// handleSearchContext handles the search_context tool invocation
func (s *Server) handleSearchContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	maxResults := getIntDefault(args, "max_results", 0)
	if maxResults < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_results must be positive", map[string]interface{}{
			"param": "max_results",
			"value": maxResults,
		})
	}

	opts := engine.SearchOptions{
		MaxResults:      maxResults,
		IncludePatterns: getStringList(args, "include"),
		ExcludePatterns: getStringList(args, "exclude"),
		IncludeContent:  getBoolDefault(args, "include_content", false),
		NoCache:         getBoolDefault(args, "no_cache", false),
	}

	result, err := s.engine.Search(ctx, query, opts)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(result.ToDict())), nil
}

// handleGrepSearch handles the grep_search tool invocation
func (s *Server) handleGrepSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pattern, ok := args["pattern"].(string)
	if !ok || pattern == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "pattern parameter is required", map[string]interface{}{
			"param":  "pattern",
			"reason": "missing or empty",
		})
	}

	output, err := s.agent.ExecuteTool(ctx, string(types.ToolGrepSearch), args)
	if err != nil {
		return nil, newMCPError(ErrorCodeToolFailed, "grep failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	matches, _ := output.([]types.GrepMatch)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"pattern": pattern,
		"matches": matches,
		"count":   len(matches),
	})), nil
}

// handleGlobSearch handles the glob_search tool invocation
func (s *Server) handleGlobSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	pattern, ok := args["pattern"].(string)
	if !ok || pattern == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "pattern parameter is required", map[string]interface{}{
			"param":  "pattern",
			"reason": "missing or empty",
		})
	}

	output, err := s.agent.ExecuteTool(ctx, string(types.ToolGlobSearch), args)
	if err != nil {
		return nil, newMCPError(ErrorCodeToolFailed, "glob failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	paths, _ := output.([]string)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"pattern": pattern,
		"files":   paths,
		"count":   len(paths),
	})), nil
}

// handleReadFile handles the read_file tool invocation
func (s *Server) handleReadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	output, err := s.agent.ExecuteTool(ctx, string(types.ToolReadFile), args)
	if err != nil {
		return nil, newMCPError(ErrorCodeToolFailed, "read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response, _ := output.(map[string]interface{})
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListDirectory handles the list_directory tool invocation
func (s *Server) handleListDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	output, err := s.agent.ExecuteTool(ctx, string(types.ToolListDirectory), args)
	if err != nil {
		return nil, newMCPError(ErrorCodeToolFailed, "list failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries, _ := output.([]map[string]interface{})
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})), nil
}

// handleIndexWorkspace handles the index_workspace tool invocation
func (s *Server) handleIndexWorkspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	files, symbols, err := s.engine.Index(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"indexed":         true,
		"files_indexed":   files,
		"symbols_indexed": symbols,
		"duration_ms":     time.Since(start).Milliseconds(),
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	decision := s.engine.Backend(ctx)

	stats, err := s.engine.IndexStats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"workspace": s.engine.Root(),
		"backend": map[string]interface{}{
			"selected":      decision.Backend,
			"file_estimate": decision.FileEstimate,
			"capped":        decision.Capped,
			"reason":        decision.Reason,
		},
		"index": map[string]interface{}{
			"files_count":   stats.Files,
			"symbols_count": stats.Symbols,
			"store_driver":  store.BuildMode,
		},
		"cache": map[string]interface{}{
			"enabled": s.engine.Config().Cache.Enabled,
			"entries": s.engine.CacheLen(),
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringList extracts a string array parameter, tolerating both native
// and JSON-decoded element types.
func getStringList(args map[string]interface{}, key string) []string {
	switch val := args[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
