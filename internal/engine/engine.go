package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codectx/fastcontext/internal/backend"
	"github.com/codectx/fastcontext/internal/cache"
	"github.com/codectx/fastcontext/internal/config"
	"github.com/codectx/fastcontext/internal/executor"
	"github.com/codectx/fastcontext/internal/index"
	"github.com/codectx/fastcontext/internal/store"
	"github.com/codectx/fastcontext/pkg/types"
)

// Options tunes engine construction
type Options struct {
	// Config overrides the workspace YAML lookup when non-nil
	Config *config.Config
}

// SearchOptions tunes one Search call. Zero values mean engine defaults.
type SearchOptions struct {
	MaxResults      int
	IncludePatterns []string
	ExcludePatterns []string
	IncludeContent  bool
	NoCache         bool
}

// FastContext is the search facade. One instance owns its backend
// selection, indexes, executor, and cache for a single workspace root;
// concurrent Search calls on the same instance are safe.
type FastContext struct {
	root string
	cfg  *config.Config

	selector *backend.Selector
	catalog  *store.Catalog
	files    *index.FileIndexer
	symbols  *index.SymbolIndexer
	exec     *executor.Executor
	queries  *cache.QueryCache
}

// New creates an engine rooted at workspace. The workspace must be an
// existing directory; configuration comes from opts.Config or from
// fastcontext.yaml at the root, falling back to defaults.
func New(workspace string, opts Options) (*FastContext, error) {
	root, err := filepath.Abs(workspace)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace %s is not a directory", root)
	}

	cfg := opts.Config
	if cfg == nil {
		cfg, err = config.LoadFromDir(root)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ignore := cfg.IgnoreSet()
	native := backend.NewNative(ignore, cfg.Index.MaxFileSize)
	ripgrep := backend.NewRipgrep()
	selector := backend.NewSelector(root, native, ripgrep,
		cfg.Selector.ProbeCap, cfg.Selector.NativeThreshold, ignore)

	catalog, err := store.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	files := index.NewFileIndexer(root, cfg.Index.Includes, cfg.Index.Excludes,
		ignore, cfg.Index.MaxFileSize, catalog)
	symbols := index.NewSymbolIndexer(files, catalog, cfg.Index.Workers)

	exec, err := executor.New(cfg.Executor.MaxParallel, cfg.Executor.TaskTimeout.Std())
	if err != nil {
		_ = catalog.Close()
		return nil, err
	}

	fc := &FastContext{
		root:     root,
		cfg:      cfg,
		selector: selector,
		catalog:  catalog,
		files:    files,
		symbols:  symbols,
		exec:     exec,
	}
	executor.RegisterStandardTools(exec, root, selectedBackend{selector})

	if cfg.Cache.Enabled {
		fc.queries, err = cache.New(cfg.Cache.Size, cfg.Cache.TTL.Std())
		if err != nil {
			_ = catalog.Close()
			return nil, err
		}
	}

	return fc, nil
}

// Close releases the engine's catalog
func (fc *FastContext) Close() error {
	return fc.catalog.Close()
}

// Root returns the workspace root
func (fc *FastContext) Root() string { return fc.root }

// Config returns the active configuration
func (fc *FastContext) Config() *config.Config { return fc.cfg }

// Executor exposes the engine's scheduler for planner-driven callers
func (fc *FastContext) Executor() *executor.Executor { return fc.exec }

// Search runs the query against the selected backend and returns matches
// aggregated per file. Queries with multiple whitespace-separated terms fan
// out one grep per term through the executor. No matches is an empty result,
// not an error; only invalid input or a backend failure errors.
func (fc *FastContext) Search(ctx context.Context, query string, opts SearchOptions) (*types.FastContextResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = fc.cfg.Search.MaxResults
	}

	key := cache.KeyFor(query, opts.IncludePatterns, opts.ExcludePatterns, maxResults, opts.IncludeContent)
	if fc.queries != nil && !opts.NoCache {
		if hit := fc.queries.Get(key); hit != nil {
			return hit, nil
		}
	}

	chosen := fc.selector.Backend(ctx)
	terms := strings.Fields(query)

	start := time.Now()
	matches, toolCalls, err := fc.runGreps(ctx, chosen, terms, query, maxResults)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return nil, err
	}

	result := fc.aggregate(query, matches, opts)
	result.SearchTimeMs = elapsed
	result.TurnsUsed = 1
	result.TotalToolCalls = toolCalls
	result.SortByRelevance()

	if fc.queries != nil && !opts.NoCache {
		fc.queries.Put(key, result)
	}
	return result, nil
}

// SearchSimple is the deterministic single-shot entry point used by the
// agent fallback path.
func (fc *FastContext) SearchSimple(ctx context.Context, query string, includePatterns ...string) (*types.FastContextResult, error) {
	result, err := fc.Search(ctx, query, SearchOptions{IncludePatterns: includePatterns})
	if err != nil {
		return nil, err
	}
	result.TurnsUsed = 1
	result.TotalToolCalls = 1
	return result, nil
}

// Index rebuilds the file and symbol catalogs. Nothing else invalidates
// them; callers decide when the workspace changed enough to re-scan.
func (fc *FastContext) Index(ctx context.Context) (files, symbols int, err error) {
	files, err = fc.files.Index(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("index files: %w", err)
	}
	symbols, err = fc.symbols.Index(ctx)
	if err != nil {
		return files, 0, fmt.Errorf("index symbols: %w", err)
	}
	return files, symbols, nil
}

// FindFiles returns indexed files matching the glob pattern
func (fc *FastContext) FindFiles(pattern string) []string {
	return fc.files.FindByPattern(pattern)
}

// FindSymbols returns indexed symbols matching the name pattern
func (fc *FastContext) FindSymbols(ctx context.Context, pattern string, limit int) ([]types.Symbol, error) {
	return fc.symbols.FindSymbol(ctx, pattern, limit)
}

// ClearCache drops every cached query result
func (fc *FastContext) ClearCache() {
	if fc.queries != nil {
		fc.queries.Clear()
	}
}

// CacheLen returns the number of cached query results
func (fc *FastContext) CacheLen() int {
	if fc.queries == nil {
		return 0
	}
	return fc.queries.Len()
}

// Backend reports the selected backend and the probe rationale
func (fc *FastContext) Backend(ctx context.Context) backend.Decision {
	return fc.selector.Decision(ctx)
}

// IndexStats returns catalog counts for status reporting
func (fc *FastContext) IndexStats(ctx context.Context) (store.Stats, error) {
	return fc.catalog.GetStats(ctx)
}

// runGreps fetches raw matches: one direct backend call for single-term
// queries, an executor fan-out for multi-term ones. A failed term degrades
// to no matches for that term instead of failing the query.
func (fc *FastContext) runGreps(ctx context.Context, b backend.SearchBackend, terms []string, query string, maxResults int) ([]types.GrepMatch, int, error) {
	if len(terms) <= 1 {
		matches, err := b.Grep(ctx, fc.root, query, maxResults)
		if err != nil {
			return nil, 1, fmt.Errorf("grep %q: %w", query, err)
		}
		return matches, 1, nil
	}

	calls := make([]types.ToolCall, len(terms))
	for i, term := range terms {
		calls[i] = types.ToolCall{
			Tool: types.ToolGrepSearch,
			Args: map[string]interface{}{"pattern": term, "max_results": maxResults},
		}
	}

	var matches []types.GrepMatch
	for i, res := range fc.exec.Execute(ctx, calls) {
		if !res.Success {
			log.Printf("search: term %q failed: %s", terms[i], res.Error)
			continue
		}
		if found, ok := res.Output.([]types.GrepMatch); ok {
			matches = append(matches, found...)
		}
	}
	return matches, len(terms), nil
}

// aggregate folds raw grep matches into per-file ranges with the configured
// context pad, applies include/exclude filters, and scores files by match
// density.
func (fc *FastContext) aggregate(query string, matches []types.GrepMatch, opts SearchOptions) *types.FastContextResult {
	result := types.NewFastContextResult(query)
	pad := fc.cfg.Search.ContextPad

	perFile := make(map[string]*types.FileMatch)
	var order []string
	for _, m := range matches {
		if !pathAllowed(m.Path, opts.IncludePatterns, opts.ExcludePatterns) {
			continue
		}
		fm, ok := perFile[m.Path]
		if !ok {
			fm = types.NewFileMatch(m.Path)
			perFile[m.Path] = fm
			order = append(order, m.Path)
		}
		r := types.LineRange{
			Start: maxInt(1, m.Line-pad),
			End:   m.Line + pad,
		}
		if opts.IncludeContent {
			r.Content = m.Snippet
		}
		fm.AddRange(r)
	}

	for _, path := range order {
		fm := perFile[path]
		fm.Relevance = relevanceScore(fm.MatchCount)
		result.AddFileMatch(fm)
	}
	return result
}

// relevanceScore maps a per-file match count onto (0, 1): every file starts
// at 0.5 and each additional match adds less than the one before.
func relevanceScore(matchCount int) float64 {
	if matchCount <= 0 {
		return 0
	}
	score := 1.0 - 0.5/float64(matchCount)
	if score < 0.5 {
		score = 0.5
	}
	return score
}

// pathAllowed applies include then exclude globs to a slash-relative path.
// Patterns without a separator also match the basename, so "*.go" behaves
// the way users expect.
func pathAllowed(path string, includes, excludes []string) bool {
	if len(includes) > 0 {
		ok := false
		for _, pattern := range includes {
			if globMatch(pattern, path) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, pattern := range excludes {
		if globMatch(pattern, path) {
			return false
		}
	}
	return true
}

func globMatch(pattern, path string) bool {
	if ok, err := doublestar.Match(pattern, path); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := doublestar.Match(pattern, filepath.Base(path))
		return ok
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// selectedBackend adapts the lazy selector to the SearchBackend interface
// so tools registered at construction time still honor the probe decision.
type selectedBackend struct {
	selector *backend.Selector
}

func (s selectedBackend) Name() string { return "selected" }

func (s selectedBackend) IsAvailable() bool { return true }

func (s selectedBackend) Grep(ctx context.Context, root, pattern string, maxResults int) ([]types.GrepMatch, error) {
	return s.selector.Backend(ctx).Grep(ctx, root, pattern, maxResults)
}

func (s selectedBackend) Glob(ctx context.Context, root, pattern string) ([]string, error) {
	return s.selector.Backend(ctx).Glob(ctx, root, pattern)
}
