package backend

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/codectx/fastcontext/pkg/types"
)

// maxScanLine bounds the line length the native scanner will match against.
// Minified or generated lines beyond this are truncated, not skipped.
const maxScanLine = 64 * 1024

// Native is the in-process search backend. It walks the workspace tree
// directly, so it carries no spawn overhead and is always available.
// Ordering is deterministic: matches come back sorted by path, then line.
type Native struct {
	ignoreDirs  map[string]struct{}
	maxFileSize int64
}

// NewNative creates the native backend. ignoreDirs holds directory names
// skipped during walks; maxFileSize <= 0 disables the size cut-off.
func NewNative(ignoreDirs map[string]struct{}, maxFileSize int64) *Native {
	return &Native{ignoreDirs: ignoreDirs, maxFileSize: maxFileSize}
}

// Name implements SearchBackend
func (n *Native) Name() string { return NameNative }

// IsAvailable implements SearchBackend; the native backend always is
func (n *Native) IsAvailable() bool { return true }

// Grep implements SearchBackend
func (n *Native) Grep(ctx context.Context, root, pattern string, maxResults int) ([]types.GrepMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		// Treat an invalid expression as a literal search.
		re = regexp.MustCompile(regexp.QuoteMeta(pattern))
	}

	matches := make([]types.GrepMatch, 0)
	err = n.walkFiles(ctx, root, func(relPath, absPath string) error {
		if maxResults > 0 && len(matches) >= maxResults {
			return fs.SkipAll
		}
		fileMatches, err := grepFile(re, relPath, absPath, remaining(maxResults, len(matches)))
		if err != nil {
			// Unreadable files are skipped, not fatal.
			return nil
		}
		matches = append(matches, fileMatches...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Glob implements SearchBackend
func (n *Native) Glob(ctx context.Context, root, pattern string) ([]string, error) {
	paths := make([]string, 0)
	err := n.walkFiles(ctx, root, func(relPath, absPath string) error {
		ok, err := doublestar.Match(pattern, relPath)
		if err != nil {
			return err
		}
		if !ok {
			// A bare filename pattern like "*.go" should also match in
			// subdirectories, the way grep tools treat globs.
			if !strings.Contains(pattern, "/") {
				ok, _ = doublestar.Match(pattern, filepath.Base(relPath))
			}
		}
		if ok {
			paths = append(paths, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// walkFiles walks the tree under root in lexical order, skipping ignored
// directories and oversized files, and invokes fn with slash-relative and
// absolute paths for each regular file.
func (n *Native) walkFiles(ctx context.Context, root string, fn func(relPath, absPath string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A vanished or unreadable entry degrades to "not found".
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root {
				if _, ignored := n.ignoreDirs[d.Name()]; ignored {
					return fs.SkipDir
				}
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if n.maxFileSize > 0 {
			if info, err := d.Info(); err == nil && info.Size() > n.maxFileSize {
				return nil
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		return fn(filepath.ToSlash(rel), path)
	})
}

// grepFile scans one file line by line. Binary files (NUL byte in the first
// block) are skipped.
func grepFile(re *regexp.Regexp, relPath, absPath string, limit int) ([]types.GrepMatch, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	read, _ := f.Read(head)
	if bytes.IndexByte(head[:read], 0) >= 0 {
		return nil, nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	var matches []types.GrepMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxScanLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !re.MatchString(line) {
			continue
		}
		matches = append(matches, types.GrepMatch{
			Path:    relPath,
			Line:    lineNo,
			Snippet: strings.TrimRight(line, "\r"),
		})
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	// Scanner errors (e.g. a line beyond the buffer cap) end the scan with
	// whatever matched so far.
	return matches, nil
}

func remaining(max, have int) int {
	if max <= 0 {
		return 0
	}
	return max - have
}
