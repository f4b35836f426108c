package index

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codectx/fastcontext/internal/store"
	"github.com/codectx/fastcontext/pkg/types"
)

// symbolPattern matches one declaration form on a single line. The name is
// always capture group 1.
type symbolPattern struct {
	re   *regexp.Regexp
	kind types.SymbolKind
}

// langPatterns maps a file extension to its top-level declaration patterns.
// Anchored at column 0 on purpose: indented declarations are not top-level
// in the languages covered here (Python methods, nested functions, etc.).
var langPatterns = map[string][]symbolPattern{
	".go": {
		{regexp.MustCompile(`^func \([^)]+\) (\w+)`), types.KindMethod},
		{regexp.MustCompile(`^func (\w+)`), types.KindFunction},
		{regexp.MustCompile(`^type (\w+) struct\b`), types.KindStruct},
		{regexp.MustCompile(`^type (\w+) interface\b`), types.KindInterface},
		{regexp.MustCompile(`^type (\w+)`), types.KindType},
		{regexp.MustCompile(`^const (\w+)`), types.KindConst},
		{regexp.MustCompile(`^var (\w+)`), types.KindVar},
	},
	".py": {
		{regexp.MustCompile(`^(?:async )?def (\w+)`), types.KindFunction},
		{regexp.MustCompile(`^class (\w+)`), types.KindClass},
	},
	".js": {
		{regexp.MustCompile(`^(?:export )?(?:async )?function (\w+)`), types.KindFunction},
		{regexp.MustCompile(`^(?:export )?class (\w+)`), types.KindClass},
		{regexp.MustCompile(`^(?:export )?const (\w+) = (?:async )?\(`), types.KindFunction},
	},
	".rs": {
		{regexp.MustCompile(`^(?:pub )?fn (\w+)`), types.KindFunction},
		{regexp.MustCompile(`^(?:pub )?struct (\w+)`), types.KindStruct},
		{regexp.MustCompile(`^(?:pub )?trait (\w+)`), types.KindInterface},
		{regexp.MustCompile(`^(?:pub )?enum (\w+)`), types.KindType},
	},
	".java": {
		{regexp.MustCompile(`^(?:public |protected |private )?(?:abstract |final )?class (\w+)`), types.KindClass},
		{regexp.MustCompile(`^(?:public |protected |private )?interface (\w+)`), types.KindInterface},
	},
}

func init() {
	// TypeScript shares the JavaScript patterns.
	langPatterns[".ts"] = langPatterns[".js"]
	langPatterns[".tsx"] = langPatterns[".js"]
	langPatterns[".jsx"] = langPatterns[".js"]
	langPatterns[".pyi"] = langPatterns[".py"]
}

// SymbolIndexer records top-level declarations from the files cataloged by
// a FileIndexer. Extraction is a lexical line scan, not parsing, so it is
// cheap and language-tolerant at the cost of nuance.
type SymbolIndexer struct {
	files   *FileIndexer
	catalog *store.Catalog
	workers int

	mu      sync.RWMutex
	indexed int
}

// NewSymbolIndexer creates a symbol indexer over an already-constructed
// FileIndexer and its catalog.
func NewSymbolIndexer(files *FileIndexer, catalog *store.Catalog, workers int) *SymbolIndexer {
	if workers < 1 {
		workers = 1
	}
	return &SymbolIndexer{files: files, catalog: catalog, workers: workers}
}

// Index scans every cataloged source file and returns the total number of
// symbols recorded. Files run concurrently under the worker bound; a file
// that cannot be read contributes nothing rather than failing the batch.
func (si *SymbolIndexer) Index(ctx context.Context) (int, error) {
	si.mu.Lock()
	defer si.mu.Unlock()

	paths := si.files.Files()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(si.workers)

	var storeMu sync.Mutex
	total := 0

	for _, path := range paths {
		if _, ok := langPatterns[filepath.Ext(path)]; !ok {
			continue
		}
		g.Go(func() error {
			symbols := scanFile(si.files.Root(), path)
			if len(symbols) == 0 {
				return nil
			}

			// SQLite writes are serialized over one connection anyway;
			// the mutex keeps the replace+count pairing atomic.
			storeMu.Lock()
			defer storeMu.Unlock()
			if err := si.catalog.ReplaceSymbols(gctx, path, symbols); err != nil {
				return err
			}
			total += len(symbols)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	si.indexed = total
	return total, nil
}

// FindSymbol returns cataloged symbols matching the name pattern (substring
// or glob), up to limit.
func (si *SymbolIndexer) FindSymbol(ctx context.Context, pattern string, limit int) ([]types.Symbol, error) {
	return si.catalog.SearchSymbols(ctx, pattern, limit)
}

// SymbolCount returns the count recorded by the last Index call
func (si *SymbolIndexer) SymbolCount() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return si.indexed
}

// scanFile extracts top-level declarations from one file
func scanFile(root, relPath string) []types.Symbol {
	patterns := langPatterns[filepath.Ext(relPath)]

	f, err := os.Open(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var symbols []types.Symbol
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		for _, p := range patterns {
			m := p.re.FindSubmatch(line)
			if m == nil {
				continue
			}
			symbols = append(symbols, types.Symbol{
				Name: string(bytes.TrimSpace(m[1])),
				Kind: p.kind,
				Path: relPath,
				Line: lineNo,
			})
			break
		}
	}
	return symbols
}
