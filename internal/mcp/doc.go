// Package mcp implements the Model Context Protocol (MCP) server for FastContext.
//
// The MCP server exposes the search surface to AI coding assistants:
//   - search_context: aggregated per-file line ranges ranked by relevance
//   - grep_search: raw regular-expression line matches
//   - glob_search: file lookup by path pattern
//   - read_file: file contents, optionally a line window
//   - list_directory: directory entries
//   - index_workspace: explicit catalog rebuild
//   - get_status: backend decision, index and cache statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server reads requests from stdin and writes responses to stdout,
// which is why all logging in this program goes to stderr.
//
// # Basic Usage
//
// The server is started with the workspace root as its only argument:
//
//	fastcontext /path/to/workspace
//
// It then listens on stdin for MCP protocol messages.
//
// # Tool: search_context
//
// Search the workspace and receive ranked, merged results:
//
//	Request:
//	{
//	  "name": "search_context",
//	  "arguments": {
//	    "query": "authenticate",
//	    "max_results": 50,
//	    "include": ["**/*.go"],
//	    "include_content": true
//	  }
//	}
//
//	Response (text content, indented JSON):
//	{
//	  "query": "authenticate",
//	  "files": [
//	    {"path": "auth/login.go", "ranges": [{"start": 10, "end": 14, "relevance": 0.75}],
//	     "relevance": 0.75, "match_count": 2}
//	  ],
//	  "total_files": 1,
//	  "total_matches": 2,
//	  "from_cache": false
//	}
//
// Parameter validation failures are returned as MCP errors with code
// -32602 (invalid params) or -32001 (empty query); engine and tool
// failures use -32603 and -32002. A query that simply matches nothing is
// not an error: it returns an empty files list.
//
// # Tool: get_status
//
// Reports which search backend the selector picked and why, the catalog
// counts, the SQLite driver variant compiled in, and the cache state. The
// backend decision is made once per server lifetime, on first use.
package mcp
