package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/fastcontext/internal/config"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func newEngine(t *testing.T, root string) *FastContext {
	t.Helper()
	fc, err := New(root, Options{Config: config.DefaultConfig()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fc.Close() })
	return fc
}

func authTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"auth/login.go": `package auth

// authenticate validates the credentials.
func authenticate(user, pass string) bool {
	return user != ""
}

// reauthenticate retries after a token refresh. authenticate is called
// again with the stored credentials.
func reauthenticate(user string) bool {
	return true
}
`,
		"auth/token.go": `package auth

func issueToken(user string) string {
	return "tok-" + user
}
`,
		"readme.md": "Login and session notes.\n",
	})
}

func TestSearchCountsEveryOccurrence(t *testing.T) {
	fc := newEngine(t, authTree(t))

	result, err := fc.Search(context.Background(), "authenticate", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	fm := result.Files[0]
	assert.Equal(t, "auth/login.go", fm.Path)
	assert.Equal(t, 4, fm.MatchCount, "each matching line counts, substrings included")
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, result.TurnsUsed)
}

func TestSearchNoMatchesIsEmptyNotError(t *testing.T) {
	fc := newEngine(t, authTree(t))

	result, err := fc.Search(context.Background(), "nonexistent_pattern_xyz123", SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Zero(t, result.TotalMatches())
}

func TestSearchEmptyQueryErrors(t *testing.T) {
	fc := newEngine(t, authTree(t))

	_, err := fc.Search(context.Background(), "   ", SearchOptions{})
	assert.Error(t, err)
}

func TestSearchCacheRoundTrip(t *testing.T) {
	fc := newEngine(t, authTree(t))

	first, err := fc.Search(context.Background(), "authenticate", SearchOptions{})
	require.NoError(t, err)
	require.False(t, first.FromCache)

	second, err := fc.Search(context.Background(), "authenticate", SearchOptions{})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Zero(t, second.SearchTimeMs)

	// Identical apart from the cache-serving metadata.
	require.Equal(t, len(first.Files), len(second.Files))
	for i := range first.Files {
		assert.Equal(t, first.Files[i].Path, second.Files[i].Path)
		assert.Equal(t, first.Files[i].MatchCount, second.Files[i].MatchCount)
		assert.Equal(t, first.Files[i].Ranges, second.Files[i].Ranges)
	}
}

func TestSearchNoCacheOptionBypasses(t *testing.T) {
	fc := newEngine(t, authTree(t))

	_, err := fc.Search(context.Background(), "authenticate", SearchOptions{NoCache: true})
	require.NoError(t, err)

	result, err := fc.Search(context.Background(), "authenticate", SearchOptions{NoCache: true})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Zero(t, fc.CacheLen())
}

func TestSearchClearCache(t *testing.T) {
	fc := newEngine(t, authTree(t))

	_, err := fc.Search(context.Background(), "authenticate", SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, fc.CacheLen())

	fc.ClearCache()
	assert.Zero(t, fc.CacheLen())

	result, err := fc.Search(context.Background(), "authenticate", SearchOptions{})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
}

func TestSearchIncludeExcludeFilters(t *testing.T) {
	fc := newEngine(t, writeTree(t, map[string]string{
		"handler.go": "package main\n\n// session handler\n",
		"notes.md":   "session notes\n",
		"session.py": "# session helper\n",
	}))

	result, err := fc.Search(context.Background(), "session", SearchOptions{
		IncludePatterns: []string{"*.go", "*.py"},
		ExcludePatterns: []string{"*.py"},
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "handler.go", result.Files[0].Path)
}

func TestSearchMultiTermFansOut(t *testing.T) {
	fc := newEngine(t, writeTree(t, map[string]string{
		"a.go": "package a\n\nfunc Login() {}\n",
		"b.go": "package b\n\nfunc Logout() {}\n",
	}))

	result, err := fc.Search(context.Background(), "Login Logout", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalToolCalls, "one grep per term")

	paths := make([]string, 0, len(result.Files))
	for _, fm := range result.Files {
		paths = append(paths, fm.Path)
	}
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, paths)
}

func TestSearchRanksDenserFilesFirst(t *testing.T) {
	fc := newEngine(t, writeTree(t, map[string]string{
		"dense.go":  "retry\n\n\n\n\n\nretry\n\n\n\n\n\nretry\n",
		"sparse.go": "retry once\n",
	}))

	result, err := fc.Search(context.Background(), "retry", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, result.Files, 2)
	assert.Equal(t, "dense.go", result.Files[0].Path)
	assert.Greater(t, result.Files[0].Relevance, result.Files[1].Relevance)
}

func TestSearchIncludeContentCarriesSnippets(t *testing.T) {
	fc := newEngine(t, writeTree(t, map[string]string{
		"cfg.go": "package cfg\n\nvar DefaultTimeout = 30\n",
	}))

	result, err := fc.Search(context.Background(), "DefaultTimeout", SearchOptions{IncludeContent: true})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	require.NotEmpty(t, result.Files[0].Ranges)
	assert.Contains(t, result.Files[0].Ranges[0].Content, "DefaultTimeout")
}

func TestSearchSimpleSingleShotMetadata(t *testing.T) {
	fc := newEngine(t, authTree(t))

	result, err := fc.SearchSimple(context.Background(), "authenticate issueToken")
	require.NoError(t, err)
	assert.Equal(t, 1, result.TurnsUsed)
	assert.Equal(t, 1, result.TotalToolCalls)
	assert.NotEmpty(t, result.Files)
}

func TestIndexAndLookups(t *testing.T) {
	fc := newEngine(t, authTree(t))

	files, symbols, err := fc.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, files)
	assert.Equal(t, 3, symbols, "authenticate, reauthenticate, issueToken")

	assert.ElementsMatch(t, []string{"auth/login.go", "auth/token.go"}, fc.FindFiles("**/*.go"))

	syms, err := fc.FindSymbols(context.Background(), "*authenticate", 0)
	require.NoError(t, err)
	assert.Len(t, syms, 2)

	stats, err := fc.IndexStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 3, stats.Symbols)
}

func TestBackendDecisionForSmallTree(t *testing.T) {
	fc := newEngine(t, authTree(t))

	decision := fc.Backend(context.Background())
	assert.Equal(t, "native", decision.Backend)
	assert.False(t, decision.Capped)
	assert.Less(t, decision.FileEstimate, 500)
}

func TestNewRejectsMissingWorkspace(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
}

func TestCacheTTLExpiryOnEngine(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.TTL = config.Duration(30 * time.Millisecond)

	root := authTree(t)
	fc, err := New(root, Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fc.Close() })

	_, err = fc.Search(context.Background(), "authenticate", SearchOptions{})
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	result, err := fc.Search(context.Background(), "authenticate", SearchOptions{})
	require.NoError(t, err)
	assert.False(t, result.FromCache, "expired entry is a miss")
}
