package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchContextTool returns the tool definition for search_context
func searchContextTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_context",
		Description: "Search the workspace and return per-file line ranges ranked by relevance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query; multiple whitespace-separated terms run in parallel",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum raw matches per pattern (engine default when omitted)",
				},
				"include": map[string]interface{}{
					"type":        "array",
					"description": "Glob patterns a file must match to appear in results",
					"items":       map[string]interface{}{"type": "string"},
				},
				"exclude": map[string]interface{}{
					"type":        "array",
					"description": "Glob patterns that remove files from results",
					"items":       map[string]interface{}{"type": "string"},
				},
				"include_content": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, matched snippets are carried in each range",
					"default":     false,
				},
				"no_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, bypass the query cache for this call",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// grepSearchTool returns the tool definition for grep_search
func grepSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "grep_search",
		Description: "Search file contents for a regular expression, returning raw line matches",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Regular expression; an invalid expression is matched literally",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum matches to return (unbounded when omitted)",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

// globSearchTool returns the tool definition for glob_search
func globSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "glob_search",
		Description: "Find files whose workspace-relative path matches a glob pattern",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Glob pattern; ** matches across directories, bare patterns match basenames",
				},
			},
			Required: []string{"pattern"},
		},
	}
}

// readFileTool returns the tool definition for read_file
func readFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "read_file",
		Description: "Read a workspace file, optionally restricted to a line window",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Workspace-relative file path",
				},
				"start_line": map[string]interface{}{
					"type":        "integer",
					"description": "First line to include (1-based)",
					"minimum":     1,
				},
				"end_line": map[string]interface{}{
					"type":        "integer",
					"description": "Last line to include",
					"minimum":     1,
				},
			},
			Required: []string{"path"},
		},
	}
}

// listDirectoryTool returns the tool definition for list_directory
func listDirectoryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_directory",
		Description: "List the entries of a workspace directory",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Workspace-relative directory; defaults to the workspace root",
				},
			},
		},
	}
}

// indexWorkspaceTool returns the tool definition for index_workspace
func indexWorkspaceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_workspace",
		Description: "Rebuild the file and symbol catalogs; nothing else invalidates them",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report the selected backend, index statistics, and cache state",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
