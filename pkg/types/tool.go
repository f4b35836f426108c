package types

import "time"

// ToolName identifies one of the closed set of search operations the
// executor can dispatch. Dispatch goes through a table keyed on this type,
// so an unrecognized name yields a structured failure rather than a panic.
type ToolName string

const (
	ToolGrepSearch    ToolName = "grep_search"
	ToolGlobSearch    ToolName = "glob_search"
	ToolReadFile      ToolName = "read_file"
	ToolListDirectory ToolName = "list_directory"
)

// Valid reports whether the name is a known tool
func (n ToolName) Valid() bool {
	switch n {
	case ToolGrepSearch, ToolGlobSearch, ToolReadFile, ToolListDirectory:
		return true
	default:
		return false
	}
}

// GrepMatch is a single raw hit returned by a search backend
type GrepMatch struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
}

// ToolCall is one named operation with its arguments. Timeout is optional;
// zero means the executor default applies.
type ToolCall struct {
	Tool    ToolName               `json:"tool"`
	Args    map[string]interface{} `json:"args"`
	Timeout time.Duration          `json:"-"`
}

// ToolResult is the structured outcome of one dispatched call. Failures are
// data, not errors: Success is false and Error carries the reason while
// sibling calls remain unaffected.
type ToolResult struct {
	Tool    ToolName    `json:"tool"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Output  interface{} `json:"output,omitempty"`
}

// ToolCallBatch is a bounded list of tool calls queued together before
// dispatch.
type ToolCallBatch struct {
	maxSize int
	calls   []ToolCall
}

// NewToolCallBatch creates a batch bounded to maxSize calls
func NewToolCallBatch(maxSize int) *ToolCallBatch {
	if maxSize < 1 {
		maxSize = 1
	}
	return &ToolCallBatch{maxSize: maxSize}
}

// Add appends a call to the batch. Adding beyond capacity returns false and
// leaves the batch unchanged; it never panics.
func (b *ToolCallBatch) Add(call ToolCall) bool {
	if len(b.calls) >= b.maxSize {
		return false
	}
	b.calls = append(b.calls, call)
	return true
}

// Len returns the number of queued calls
func (b *ToolCallBatch) Len() int {
	return len(b.calls)
}

// MaxSize returns the batch capacity
func (b *ToolCallBatch) MaxSize() int {
	return b.maxSize
}

// Calls returns the queued calls in insertion order
func (b *ToolCallBatch) Calls() []ToolCall {
	return b.calls
}
