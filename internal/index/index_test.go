package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codectx/fastcontext/internal/store"
	"github.com/codectx/fastcontext/pkg/types"
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

func newTestIndexer(t *testing.T, root string, includes, excludes []string) (*FileIndexer, *store.Catalog) {
	t.Helper()
	catalog, err := store.NewCatalog()
	require.NoError(t, err)
	t.Cleanup(func() { _ = catalog.Close() })

	ignore := map[string]struct{}{".git": {}, "node_modules": {}, "vendor": {}}
	return NewFileIndexer(root, includes, excludes, ignore, 0, catalog), catalog
}

func TestFileIndexerIndexCount(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go":          "package a\n",
		"b.go":          "package b\n",
		"sub/c.go":      "package c\n",
		"sub/deep/d.go": "package d\n",
		"e.go":          "package e\n",
	})

	fi, _ := newTestIndexer(t, root, []string{"**/*.go"}, nil)

	count, err := fi.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestFileIndexerFindByPatternDoesNotRewalk(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go":        "package a\n",
		"sub/b.go":    "package b\n",
		"docs/notes":  "text\n",
		"sub/util.py": "x = 1\n",
	})

	fi, _ := newTestIndexer(t, root, nil, nil)
	_, err := fi.Index(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, fi.WalkCount())

	for i := 0; i < 100; i++ {
		got := fi.FindByPattern("**/*.go")
		assert.ElementsMatch(t, []string{"a.go", "sub/b.go"}, got)
	}
	assert.Equal(t, 1, fi.WalkCount(), "lookups must serve from the catalog")
}

func TestFileIndexerIncludeExclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":      "package main\n",
		"main_test.go": "package main\n",
		"lib/x.go":     "package lib\n",
		"notes.md":     "# notes\n",
	})

	fi, _ := newTestIndexer(t, root, []string{"**/*.go"}, []string{"**/*_test.go"})
	count, err := fi.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.ElementsMatch(t, []string{"main.go", "lib/x.go"}, fi.Files())
}

func TestFileIndexerSkipsIgnoredDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":                 "package main\n",
		"node_modules/dep/idx.js": "x\n",
		".git/HEAD":               "ref\n",
	})

	fi, _ := newTestIndexer(t, root, nil, nil)
	count, err := fi.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFileIndexerReindexReplacesCatalog(t *testing.T) {
	root := writeTree(t, map[string]string{"a.go": "package a\n"})

	fi, _ := newTestIndexer(t, root, nil, nil)
	count, err := fi.Index(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package b\n"), 0644))

	// Stale until explicitly re-indexed.
	assert.Len(t, fi.FindByPattern("*.go"), 1)

	count, err = fi.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, fi.FindByPattern("*.go"), 2)
}

func TestSymbolIndexerGoDeclarations(t *testing.T) {
	root := writeTree(t, map[string]string{
		"svc.go": `package svc

import "fmt"

const MaxRetries = 3

var defaultTimeout = 30

type Server struct {
	addr string
}

type Handler interface {
	Handle() error
}

func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

func (s *Server) Start() error {
	fmt.Println("starting")
	return nil
}
`,
	})

	fi, catalog := newTestIndexer(t, root, nil, nil)
	_, err := fi.Index(context.Background())
	require.NoError(t, err)

	si := NewSymbolIndexer(fi, catalog, 2)
	count, err := si.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	assert.Equal(t, 6, si.SymbolCount())

	byName := map[string]types.SymbolKind{}
	syms, err := si.FindSymbol(context.Background(), "", 0)
	require.NoError(t, err)
	for _, s := range syms {
		byName[s.Name] = s.Kind
	}

	assert.Equal(t, types.KindConst, byName["MaxRetries"])
	assert.Equal(t, types.KindVar, byName["defaultTimeout"])
	assert.Equal(t, types.KindStruct, byName["Server"])
	assert.Equal(t, types.KindInterface, byName["Handler"])
	assert.Equal(t, types.KindFunction, byName["NewServer"])
	assert.Equal(t, types.KindMethod, byName["Start"])
}

func TestSymbolIndexerPythonAndTypeScript(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py": `import os

class Session:
    def refresh(self):
        pass

async def fetch_token():
    pass

def helper():
    pass
`,
		"ui.ts": `export class Widget {}

export function render(w: Widget): void {}

const mount = (el: Element) => {}
`,
	})

	fi, catalog := newTestIndexer(t, root, nil, nil)
	_, err := fi.Index(context.Background())
	require.NoError(t, err)

	si := NewSymbolIndexer(fi, catalog, 4)
	count, err := si.Index(context.Background())
	require.NoError(t, err)

	// Python: Session, fetch_token, helper (refresh is indented, not
	// top-level). TypeScript: Widget, render, mount.
	assert.Equal(t, 6, count)

	syms, err := si.FindSymbol(context.Background(), "Session", 0)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, types.KindClass, syms[0].Kind)
	assert.Equal(t, "app.py", syms[0].Path)

	syms, err = si.FindSymbol(context.Background(), "refresh", 0)
	require.NoError(t, err)
	assert.Empty(t, syms, "indented declarations are not top-level")
}

func TestSymbolIndexerFindByGlob(t *testing.T) {
	root := writeTree(t, map[string]string{
		"h.go": "package h\n\nfunc HandleLogin() {}\n\nfunc HandleLogout() {}\n\nfunc parse() {}\n",
	})

	fi, catalog := newTestIndexer(t, root, nil, nil)
	_, err := fi.Index(context.Background())
	require.NoError(t, err)

	si := NewSymbolIndexer(fi, catalog, 1)
	_, err = si.Index(context.Background())
	require.NoError(t, err)

	syms, err := si.FindSymbol(context.Background(), "Handle*", 0)
	require.NoError(t, err)
	require.Len(t, syms, 2)
	assert.Equal(t, "HandleLogin", syms[0].Name)
	assert.Equal(t, "HandleLogout", syms[1].Name)
}
