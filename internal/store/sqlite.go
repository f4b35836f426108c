package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codectx/fastcontext/pkg/types"
)

// ErrNotFound is returned when a requested entity doesn't exist
var ErrNotFound = errors.New("not found")

// FileRecord is one catalog entry for an indexed file
type FileRecord struct {
	Path      string // Relative to the workspace root, slash-separated
	SizeBytes int64
	ModTime   time.Time
}

// Stats summarizes catalog contents for status reporting
type Stats struct {
	Files   int `json:"files"`
	Symbols int `json:"symbols"`
}

// Catalog is the in-memory SQLite store for indexed files and symbols
type Catalog struct {
	db *sql.DB
}

// schema holds the catalog tables. Symbols cascade with their file so a
// re-index of one file cannot leave stale declarations behind.
const schema = `
CREATE TABLE IF NOT EXISTS files (
    path TEXT PRIMARY KEY,
    size_bytes INTEGER NOT NULL,
    mod_time TIMESTAMP
);

CREATE TABLE IF NOT EXISTS symbols (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    path TEXT NOT NULL,
    line INTEGER NOT NULL,
    FOREIGN KEY (path) REFERENCES files(path) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_path ON symbols(path);
`

// NewCatalog opens a fresh in-memory catalog
func NewCatalog() (*Catalog, error) {
	db, err := sql.Open(DriverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// A single connection keeps every statement on the same in-memory
	// database; a pool would silently hand out empty databases.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close closes the catalog and discards all contents
func (c *Catalog) Close() error {
	return c.db.Close()
}

// UpsertFile inserts or replaces one file record
func (c *Catalog) UpsertFile(ctx context.Context, f FileRecord) error {
	query := `
		INSERT INTO files (path, size_bytes, mod_time) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET size_bytes = excluded.size_bytes, mod_time = excluded.mod_time
	`
	if _, err := c.db.ExecContext(ctx, query, f.Path, f.SizeBytes, f.ModTime); err != nil {
		return fmt.Errorf("failed to upsert file %s: %w", f.Path, err)
	}
	return nil
}

// GetFile returns one file record by path
func (c *Catalog) GetFile(ctx context.Context, path string) (FileRecord, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT path, size_bytes, mod_time FROM files WHERE path = ?", path)

	var f FileRecord
	if err := row.Scan(&f.Path, &f.SizeBytes, &f.ModTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FileRecord{}, ErrNotFound
		}
		return FileRecord{}, err
	}
	return f, nil
}

// ListFiles returns all file records ordered by path
func (c *Catalog) ListFiles(ctx context.Context) ([]FileRecord, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT path, size_bytes, mod_time FROM files ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.Path, &f.SizeBytes, &f.ModTime); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// CountFiles returns the number of cataloged files
func (c *Catalog) CountFiles(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&n)
	return n, err
}

// ReplaceSymbols swaps the symbol set for one file in a single transaction
func (c *Catalog) ReplaceSymbols(ctx context.Context, path string, symbols []types.Symbol) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM symbols WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to clear symbols for %s: %w", path, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO symbols (name, kind, path, line) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, sym := range symbols {
		if _, err := stmt.ExecContext(ctx, sym.Name, string(sym.Kind), path, sym.Line); err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.Name, err)
		}
	}

	return tx.Commit()
}

// SearchSymbols finds symbols whose name matches pattern. Glob wildcards
// (* and ?) translate to SQL LIKE wildcards; a bare pattern matches as a
// substring. limit <= 0 means no limit.
func (c *Catalog) SearchSymbols(ctx context.Context, pattern string, limit int) ([]types.Symbol, error) {
	like := globToLike(pattern)

	query := "SELECT name, kind, path, line FROM symbols WHERE name LIKE ? ESCAPE '\\' ORDER BY name, path, line"
	args := []interface{}{like}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	symbols := make([]types.Symbol, 0)
	for rows.Next() {
		var sym types.Symbol
		var kind string
		if err := rows.Scan(&sym.Name, &kind, &sym.Path, &sym.Line); err != nil {
			return nil, err
		}
		sym.Kind = types.SymbolKind(kind)
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// CountSymbols returns the number of cataloged symbols
func (c *Catalog) CountSymbols(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols").Scan(&n)
	return n, err
}

// GetStats returns catalog counts for status reporting
func (c *Catalog) GetStats(ctx context.Context) (Stats, error) {
	files, err := c.CountFiles(ctx)
	if err != nil {
		return Stats{}, err
	}
	symbols, err := c.CountSymbols(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Files: files, Symbols: symbols}, nil
}

// Clear empties the catalog; files cascade to symbols
func (c *Catalog) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM files"); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, "DELETE FROM symbols")
	return err
}

// globToLike converts a glob-style name pattern to a LIKE expression
func globToLike(pattern string) string {
	if pattern == "" {
		return "%"
	}

	hasWildcard := strings.ContainsAny(pattern, "*?")

	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	if hasWildcard {
		return b.String()
	}
	return "%" + b.String() + "%"
}
