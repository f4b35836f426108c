package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/fastcontext/internal/config"
	"github.com/codectx/fastcontext/internal/engine"
	"github.com/codectx/fastcontext/pkg/types"
)

// scriptedPlanner returns one pre-baked plan per turn, then stops
type scriptedPlanner struct {
	available bool
	plans     [][]types.ToolCall
	planErr   error
	turns     int
}

func (p *scriptedPlanner) IsAvailable() bool { return p.available }

func (p *scriptedPlanner) PlanNextCalls(ctx context.Context, pc PlanContext) ([]types.ToolCall, error) {
	p.turns++
	if p.planErr != nil {
		return nil, p.planErr
	}
	if pc.Turn > len(p.plans) {
		return nil, nil
	}
	return p.plans[pc.Turn-1], nil
}

func newTestEngine(t *testing.T) *engine.FastContext {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"auth/login.go":   "package auth\n\nfunc Authenticate(user string) bool {\n\treturn user != \"\"\n}\n",
		"auth/session.go": "package auth\n\ntype Session struct{}\n\nfunc (s *Session) Authenticate() {}\n",
		"readme.md":       "How to authenticate: see auth/login.go\n",
	}
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	fc, err := engine.New(root, engine.Options{Config: config.DefaultConfig()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fc.Close() })
	return fc
}

func TestSearchWithoutPlannerFallsBack(t *testing.T) {
	fc := newTestEngine(t)
	a := New(fc, nil, 3)

	result, err := a.Search(context.Background(), "Authenticate")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TurnsUsed)
	assert.Equal(t, 1, result.TotalToolCalls)
	assert.NotEmpty(t, result.Files)
}

func TestSearchUnavailablePlannerFallsBack(t *testing.T) {
	fc := newTestEngine(t)
	p := &scriptedPlanner{available: false}
	a := New(fc, p, 3)

	result, err := a.Search(context.Background(), "Authenticate")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TurnsUsed)
	assert.Zero(t, p.turns, "unavailable planner is never consulted")
	assert.NotEmpty(t, result.Files)
}

func TestSearchPlannerErrorFallsBack(t *testing.T) {
	fc := newTestEngine(t)
	p := &scriptedPlanner{available: true, planErr: errors.New("model offline")}
	a := New(fc, p, 3)

	result, err := a.Search(context.Background(), "Authenticate")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TurnsUsed)
	assert.Equal(t, 1, result.TotalToolCalls)
	assert.NotEmpty(t, result.Files)
}

func TestFallbackMatchesSearchSimple(t *testing.T) {
	fc := newTestEngine(t)
	a := New(fc, nil, 3)

	viaAgent, err := a.Search(context.Background(), "Authenticate")
	require.NoError(t, err)
	direct, err := fc.SearchSimple(context.Background(), "Authenticate")
	require.NoError(t, err)

	require.Equal(t, len(direct.Files), len(viaAgent.Files))
	for i := range direct.Files {
		assert.Equal(t, direct.Files[i].Path, viaAgent.Files[i].Path)
		assert.Equal(t, direct.Files[i].MatchCount, viaAgent.Files[i].MatchCount)
	}
}

func TestSearchPlannerDrivenTurns(t *testing.T) {
	fc := newTestEngine(t)
	p := &scriptedPlanner{
		available: true,
		plans: [][]types.ToolCall{
			{
				{Tool: types.ToolGrepSearch, Args: map[string]interface{}{"pattern": "Authenticate"}},
				{Tool: types.ToolGlobSearch, Args: map[string]interface{}{"pattern": "auth/*.go"}},
			},
			{
				{Tool: types.ToolReadFile, Args: map[string]interface{}{"path": "auth/login.go"}},
			},
		},
	}
	a := New(fc, p, 5)

	result, err := a.Search(context.Background(), "how does authentication work")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TurnsUsed)
	assert.Equal(t, 3, result.TotalToolCalls)
	assert.Equal(t, 3, p.turns, "planner consulted once per turn plus the empty stop")

	paths := make(map[string]*types.FileMatch)
	for _, fm := range result.Files {
		paths[fm.Path] = fm
	}
	require.Contains(t, paths, "auth/login.go")
	require.Contains(t, paths, "auth/session.go")

	// The explicit read folds into the grep evidence for the same file.
	login := paths["auth/login.go"]
	assert.NotEmpty(t, login.Ranges)
}

func TestSearchClampsOversizedPlan(t *testing.T) {
	fc := newTestEngine(t)

	// More calls than the executor's parallelism in a single turn.
	parallel := fc.Config().Executor.MaxParallel
	oversized := make([]types.ToolCall, parallel+3)
	for i := range oversized {
		oversized[i] = types.ToolCall{
			Tool: types.ToolGrepSearch,
			Args: map[string]interface{}{"pattern": "Authenticate"},
		}
	}
	p := &scriptedPlanner{available: true, plans: [][]types.ToolCall{oversized}}
	a := New(fc, p, 3)

	result, err := a.Search(context.Background(), "Authenticate")
	require.NoError(t, err)
	assert.Equal(t, parallel, result.TotalToolCalls, "plan clamped to max parallelism")
}

func TestSearchStopsAtMaxTurns(t *testing.T) {
	fc := newTestEngine(t)

	// A planner that never stops proposing work.
	endless := make([][]types.ToolCall, 10)
	for i := range endless {
		endless[i] = []types.ToolCall{
			{Tool: types.ToolGrepSearch, Args: map[string]interface{}{"pattern": "Authenticate"}},
		}
	}
	p := &scriptedPlanner{available: true, plans: endless}
	a := New(fc, p, 2)

	result, err := a.Search(context.Background(), "Authenticate")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TurnsUsed)
	assert.Equal(t, 2, result.TotalToolCalls)
}

func TestSearchDropsInvalidToolNames(t *testing.T) {
	fc := newTestEngine(t)
	p := &scriptedPlanner{
		available: true,
		plans: [][]types.ToolCall{
			{
				{Tool: "hallucinated_tool", Args: map[string]interface{}{}},
				{Tool: types.ToolGrepSearch, Args: map[string]interface{}{"pattern": "Authenticate"}},
			},
		},
	}
	a := New(fc, p, 3)

	result, err := a.Search(context.Background(), "Authenticate")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalToolCalls, "invalid tool silently dropped")
	assert.NotEmpty(t, result.Files)
}

func TestGetToolsCoversClosedSet(t *testing.T) {
	fc := newTestEngine(t)
	a := New(fc, nil, 3)

	tools := a.GetTools()
	names := make([]types.ToolName, len(tools))
	for i, spec := range tools {
		names[i] = spec.Name
		assert.NotEmpty(t, spec.Description)
		assert.Equal(t, "object", spec.InputSchema["type"])
	}
	assert.ElementsMatch(t, []types.ToolName{
		types.ToolGrepSearch, types.ToolGlobSearch,
		types.ToolReadFile, types.ToolListDirectory,
	}, names)
}

func TestExecuteTool(t *testing.T) {
	fc := newTestEngine(t)
	a := New(fc, nil, 3)

	out, err := a.ExecuteTool(context.Background(), "grep_search",
		map[string]interface{}{"pattern": "Authenticate"})
	require.NoError(t, err)
	matches := out.([]types.GrepMatch)
	assert.NotEmpty(t, matches)

	_, err = a.ExecuteTool(context.Background(), "no_such_tool", nil)
	assert.ErrorIs(t, err, types.ErrUnknownTool)

	_, err = a.ExecuteTool(context.Background(), "grep_search", map[string]interface{}{})
	assert.Error(t, err, "missing pattern argument")
}
