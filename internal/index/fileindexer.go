package index

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codectx/fastcontext/internal/store"
)

// FileIndexer builds and caches the workspace file inventory. The catalog
// lives in memory for the indexer's lifetime; FindByPattern serves lookups
// from it without re-walking the tree.
type FileIndexer struct {
	root        string
	includes    []string
	excludes    []string
	ignoreDirs  map[string]struct{}
	maxFileSize int64
	catalog     *store.Catalog

	mu        sync.RWMutex
	files     []string
	walkCount int
}

// NewFileIndexer creates a file indexer rooted at root. catalog may be nil
// when no symbol layer is wanted; file records are then kept in memory only.
func NewFileIndexer(root string, includes, excludes []string, ignoreDirs map[string]struct{}, maxFileSize int64, catalog *store.Catalog) *FileIndexer {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &FileIndexer{
		root:        root,
		includes:    includes,
		excludes:    excludes,
		ignoreDirs:  ignoreDirs,
		maxFileSize: maxFileSize,
		catalog:     catalog,
	}
}

// Root returns the workspace root
func (fi *FileIndexer) Root() string { return fi.root }

// Index walks the workspace, rebuilds the catalog, and returns the number
// of files indexed. Concurrent Index calls are serialized.
func (fi *FileIndexer) Index(ctx context.Context) (int, error) {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	// A rebuild starts from an empty catalog so files deleted since the
	// last walk do not linger; their symbols cascade away with them.
	if fi.catalog != nil {
		if err := fi.catalog.Clear(ctx); err != nil {
			return 0, err
		}
	}

	var files []string
	err := filepath.WalkDir(fi.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != fi.root {
				if _, ignored := fi.ignoreDirs[d.Name()]; ignored {
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, infoErr := d.Info()
		if fi.maxFileSize > 0 && infoErr == nil && info.Size() > fi.maxFileSize {
			return nil
		}

		rel, relErr := filepath.Rel(fi.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !fi.matches(rel) {
			return nil
		}

		files = append(files, rel)

		if fi.catalog != nil && infoErr == nil {
			record := store.FileRecord{Path: rel, SizeBytes: info.Size(), ModTime: info.ModTime()}
			if err := fi.catalog.UpsertFile(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	fi.files = files
	fi.walkCount++
	return len(files), nil
}

// FindByPattern returns cataloged files matching the doublestar pattern.
// It never re-walks the filesystem; an un-indexed workspace yields nothing.
func (fi *FileIndexer) FindByPattern(pattern string) []string {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	matched := make([]string, 0)
	for _, path := range fi.files {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			break
		}
		if !ok && !strings.Contains(pattern, "/") {
			ok, _ = doublestar.Match(pattern, filepath.Base(path))
		}
		if ok {
			matched = append(matched, path)
		}
	}
	return matched
}

// Files returns a copy of the cataloged file list
func (fi *FileIndexer) Files() []string {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	out := make([]string, len(fi.files))
	copy(out, fi.files)
	return out
}

// WalkCount reports how many filesystem walks have run; lookups between
// Index calls must not increase it.
func (fi *FileIndexer) WalkCount() int {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return fi.walkCount
}

// matches applies include then exclude patterns to a relative path
func (fi *FileIndexer) matches(rel string) bool {
	included := false
	for _, pattern := range fi.includes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range fi.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}
