package agent

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/codectx/fastcontext/internal/engine"
	"github.com/codectx/fastcontext/pkg/types"
)

// PlanContext is everything a planner sees before proposing the next batch
// of tool calls.
type PlanContext struct {
	Query    string
	Turn     int
	MaxTurns int

	// Previous holds the results of the last dispatched batch; nil on the
	// first turn.
	Previous []types.ToolResult

	// Gathered is a snapshot of what the search has accumulated so far.
	// Planners must treat it as read-only.
	Gathered *types.FastContextResult
}

// Planner proposes tool calls for the next search turn. An empty plan ends
// the search.
type Planner interface {
	PlanNextCalls(ctx context.Context, pc PlanContext) ([]types.ToolCall, error)
	IsAvailable() bool
}

// Agent drives a multi-turn, planner-guided search over one engine. When no
// usable planner exists the agent degrades to the engine's deterministic
// single-shot search, so callers always get a result of the same shape.
type Agent struct {
	engine      *engine.FastContext
	planner     Planner
	maxTurns    int
	maxParallel int
}

// DefaultMaxTurns bounds planner-driven searches that never return an
// empty plan.
const DefaultMaxTurns = 5

// New creates an agent over fc. planner may be nil; maxTurns <= 0 selects
// the default.
func New(fc *engine.FastContext, planner Planner, maxTurns int) *Agent {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Agent{
		engine:      fc,
		planner:     planner,
		maxTurns:    maxTurns,
		maxParallel: fc.Config().Executor.MaxParallel,
	}
}

// MaxTurns returns the turn ceiling
func (a *Agent) MaxTurns() int { return a.maxTurns }

// Search answers the query, planner-driven when possible. Without a
// planner, with an unavailable one, or when planning fails, it falls back
// to the engine's single-shot search.
func (a *Agent) Search(ctx context.Context, query string) (*types.FastContextResult, error) {
	if a.planner == nil || !a.planner.IsAvailable() {
		return a.engine.SearchSimple(ctx, query)
	}

	result := types.NewFastContextResult(query)
	var previous []types.ToolResult
	totalCalls := 0

	for turn := 1; turn <= a.maxTurns; turn++ {
		plan, err := a.planner.PlanNextCalls(ctx, PlanContext{
			Query:    query,
			Turn:     turn,
			MaxTurns: a.maxTurns,
			Previous: previous,
			Gathered: result,
		})
		if err != nil {
			log.Printf("agent: planning failed on turn %d, falling back: %v", turn, err)
			return a.engine.SearchSimple(ctx, query)
		}
		if len(plan) == 0 {
			break
		}

		batch := types.NewToolCallBatch(a.maxParallel)
		for _, call := range plan {
			if !call.Tool.Valid() {
				log.Printf("agent: dropping call to unknown tool %q", call.Tool)
				continue
			}
			if !batch.Add(call) {
				log.Printf("agent: turn %d plan exceeds %d calls, truncating", turn, a.maxParallel)
				break
			}
		}
		if batch.Len() == 0 {
			break
		}

		result.TurnsUsed = turn
		totalCalls += batch.Len()
		previous = a.engine.Executor().Execute(ctx, batch.Calls())
		a.fold(result, previous)
	}

	result.TotalToolCalls = totalCalls
	result.SortByRelevance()
	return result, nil
}

// fold merges one batch of tool results into the accumulating search result
func (a *Agent) fold(result *types.FastContextResult, batch []types.ToolResult) {
	pad := a.engine.Config().Search.ContextPad

	for _, res := range batch {
		if !res.Success {
			continue
		}
		switch output := res.Output.(type) {
		case []types.GrepMatch:
			perFile := make(map[string]*types.FileMatch)
			for _, m := range output {
				fm, ok := perFile[m.Path]
				if !ok {
					fm = types.NewFileMatch(m.Path)
					perFile[m.Path] = fm
				}
				fm.AddRange(types.LineRange{
					Start:   maxInt(1, m.Line-pad),
					End:     m.Line + pad,
					Content: m.Snippet,
				})
			}
			for _, fm := range perFile {
				fm.Relevance = 1.0 - 0.5/float64(fm.MatchCount)
				result.AddFileMatch(fm)
			}
		case []string:
			// Glob hits carry no line evidence; record the path with a
			// modest score so grep evidence outranks it.
			for _, path := range output {
				fm := types.NewFileMatch(path)
				fm.Relevance = 0.3
				result.AddFileMatch(fm)
			}
		case map[string]interface{}:
			fm, ok := fileMatchFromRead(output)
			if ok {
				result.AddFileMatch(fm)
			}
		}
	}
}

// fileMatchFromRead converts a read_file output into a single-range match
func fileMatchFromRead(output map[string]interface{}) (*types.FileMatch, bool) {
	path, _ := output["path"].(string)
	if path == "" {
		return nil, false
	}
	start, _ := output["start_line"].(int)
	end, _ := output["end_line"].(int)
	if start < 1 || end < start {
		return nil, false
	}
	content, _ := output["content"].(string)

	fm := types.NewFileMatch(path)
	fm.AddRange(types.LineRange{Start: start, End: end, Content: content})
	// An explicit read is strong evidence the planner wanted this file.
	fm.Relevance = 0.8
	return fm, true
}

// ToolSpec describes one tool for planner or protocol consumption
type ToolSpec struct {
	Name        types.ToolName         `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// GetTools lists the tools an agent search may dispatch
func (a *Agent) GetTools() []ToolSpec {
	return []ToolSpec{
		{
			Name:        types.ToolGrepSearch,
			Description: "Search file contents for a regular expression",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pattern":     map[string]interface{}{"type": "string", "description": "Regular expression to search for"},
					"max_results": map[string]interface{}{"type": "integer", "description": "Maximum matches to return"},
				},
				"required": []string{"pattern"},
			},
		},
		{
			Name:        types.ToolGlobSearch,
			Description: "Find files whose path matches a glob pattern",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pattern": map[string]interface{}{"type": "string", "description": "Glob pattern, doublestar supported"},
				},
				"required": []string{"pattern"},
			},
		},
		{
			Name:        types.ToolReadFile,
			Description: "Read a file, optionally a line window",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":       map[string]interface{}{"type": "string", "description": "Workspace-relative file path"},
					"start_line": map[string]interface{}{"type": "integer", "description": "First line to include"},
					"end_line":   map[string]interface{}{"type": "integer", "description": "Last line to include"},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        types.ToolListDirectory,
			Description: "List the entries of a workspace directory",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{"type": "string", "description": "Workspace-relative directory, defaults to the root"},
				},
			},
		},
	}
}

// ExecuteTool dispatches a single named tool call and returns its raw
// output. Failures surface as errors here, unlike batched execution.
func (a *Agent) ExecuteTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	tool := types.ToolName(name)
	if !tool.Valid() {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownTool, name)
	}

	results := a.engine.Executor().Execute(ctx, []types.ToolCall{{Tool: tool, Args: args}})
	if len(results) != 1 {
		return nil, fmt.Errorf("expected one result, got %d", len(results))
	}
	if !results[0].Success {
		return nil, errors.New(results[0].Error)
	}
	return results[0].Output, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
